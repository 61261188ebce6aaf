// Package decl reads node declarations: the build-time description of an
// external node (name, inputs, parameters, executable) from which host
// assets are generated and parameter schemas are derived.
package decl

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	houdini "github.com/luxalpa/houdini-node"
)

// Format is the encoding of a declaration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("decl: cannot tell format of %q (want .yaml, .yml or .toml)", path)
}

// Declaration describes one external node.
type Declaration struct {
	// Name is the operator type name, e.g. "double_mass".
	Name  string `yaml:"name" toml:"name"`
	Label string `yaml:"label,omitempty" toml:"label,omitempty"`
	// Command is the node executable the generated asset runs.
	Command string `yaml:"command" toml:"command"`
	// Inputs is the number of geometry inputs of the asset (default
	// houdini.DefaultMaxInputs).
	Inputs      int      `yaml:"inputs,omitempty" toml:"inputs,omitempty"`
	InputLabels []string `yaml:"input_labels,omitempty" toml:"input_labels,omitempty"`
	Params      []Param  `yaml:"params,omitempty" toml:"params,omitempty"`
}

// Param is one parameter on the asset interface. At cook time the host
// injects its value as a detail attribute of the same name on input 0.
type Param struct {
	Name    string   `yaml:"name" toml:"name"`
	Label   string   `yaml:"label,omitempty" toml:"label,omitempty"`
	Kind    string   `yaml:"kind" toml:"kind"`
	Default any      `yaml:"default,omitempty" toml:"default,omitempty"`
	Min     *float64 `yaml:"min,omitempty" toml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" toml:"max,omitempty"`
}

// Load reads and validates a declaration file.
func Load(path string) (*Declaration, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decl: %w", err)
	}
	d, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("decl: %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a declaration, rejecting unknown fields, applies defaults
// and validates it.
func Parse(data []byte, format Format) (*Declaration, error) {
	var d Declaration
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown declaration format %q", format)
	}
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes d in format.
func (d *Declaration) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatTOML:
		return toml.Marshal(d)
	}
	return nil, fmt.Errorf("unknown declaration format %q", format)
}

func (d *Declaration) applyDefaults() {
	if d.Inputs == 0 {
		d.Inputs = houdini.DefaultMaxInputs
	}
	if d.Label == "" {
		d.Label = d.Name
	}
	for i := range d.Params {
		if d.Params[i].Label == "" {
			d.Params[i].Label = d.Params[i].Name
		}
	}
}

// Validate checks the declaration, including that every parameter maps to a
// valid detail attribute.
func (d *Declaration) Validate() error {
	var errs []error
	if !validName(d.Name) {
		errs = append(errs, fmt.Errorf("name %q must start with a letter and contain only letters, digits and underscores", d.Name))
	}
	if d.Command == "" {
		errs = append(errs, errors.New("command is required"))
	}
	if d.Inputs < 1 {
		errs = append(errs, fmt.Errorf("inputs must be at least 1, got %d", d.Inputs))
	}
	if len(d.InputLabels) > d.Inputs {
		errs = append(errs, fmt.Errorf("%d input labels for %d inputs", len(d.InputLabels), d.Inputs))
	}
	for _, p := range d.Params {
		if !validName(p.Name) {
			errs = append(errs, fmt.Errorf("param name %q is not a valid parameter name", p.Name))
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			errs = append(errs, fmt.Errorf("param %s: min %v above max %v", p.Name, *p.Min, *p.Max))
		}
	}
	if _, err := d.ParamSchema(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ParamSchema returns the schema of the parameter channel: one optional
// detail attribute per parameter, defaulting to the parameter default.
func (d *Declaration) ParamSchema() (*houdini.Schema, error) {
	specs := make([]houdini.AttributeSpec, 0, len(d.Params))
	for _, p := range d.Params {
		kind, ok := houdini.ParseKind(p.Kind)
		if !ok {
			return nil, fmt.Errorf("param %s: %w", p.Name, &houdini.SchemaError{Code: houdini.CodeUnsupportedKind,
				Name: p.Name, Kind: p.Kind, Message: fmt.Sprintf("unsupported parameter kind %q", p.Kind)})
		}
		specs = append(specs, houdini.AttributeSpec{
			Class:    houdini.ClassDetail,
			Name:     p.Name,
			Kind:     kind,
			Optional: true,
			Default:  p.Default,
		})
	}
	s, err := houdini.NewSchema(specs...)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return s, nil
}

// InputSchemas returns the per-slot schemas for decoding: parameters on
// input 0, every other slot undeclared.
func (d *Declaration) InputSchemas() ([]*houdini.Schema, error) {
	s, err := d.ParamSchema()
	if err != nil {
		return nil, err
	}
	return []*houdini.Schema{s}, nil
}

// InputLabel returns the label of input i, falling back to "Input N".
func (d *Declaration) InputLabel(i int) string {
	if i < len(d.InputLabels) && d.InputLabels[i] != "" {
		return d.InputLabels[i]
	}
	return fmt.Sprintf("Input %d", i+1)
}
