// Package scaffold generates an expanded Houdini digital asset library that
// runs an external node: the library index, the operator's parameter
// interface, the Python cook glue and the section lists.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	houdini "github.com/luxalpa/houdini-node"
	"github.com/luxalpa/houdini-node/decl"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Section file names. The library level holds the index, the library marker
// and a Sections.list naming the operator directory; the operator directory
// holds DialogScript, PythonCook and its own Sections.list.
const (
	SectionIndex        = "INDEX__SECTION"
	SectionLibrary      = "houdini.hdalibrary"
	SectionDialogScript = "DialogScript"
	SectionPythonCook   = "PythonCook"
	SectionList         = "Sections.list"
)

// operatorTable is the operator context of generated assets.
const operatorTable = "Sop"

var operatorTemplates = []struct{ section, file string }{
	{SectionDialogScript, "templates/DialogScript.tmpl"},
	{SectionPythonCook, "templates/PythonCook.tmpl"},
	{SectionList, "templates/Sections.list.tmpl"},
}

var libraryTemplates = []struct{ section, file string }{
	{SectionIndex, "templates/INDEX__SECTION.tmpl"},
	{SectionList, "templates/Library.list.tmpl"},
}

var templates = template.Must(template.New("asset").Funcs(template.FuncMap{
	"quote":    quote,
	"parmType": parmType,
	"parmSize": parmSize,
	"defaults": defaults,
	"inputs":   inputs,
	"pyString": strconv.Quote,
	"add1":     func(i int) int { return i + 1 },
	"deref":    func(f *float64) string { return strconv.FormatFloat(*f, 'g', -1, 64) },
}).ParseFS(templatesFS, "templates/*.tmpl"))

// Section is one file of an expanded asset library.
type Section struct {
	// Path is relative to the library root and slash separated, e.g.
	// "Sop_1double__mass/DialogScript".
	Path string
	Data []byte
}

// Asset is the rendered library of one node.
type Asset struct {
	Name string
	// Dir is the operator directory inside the library, e.g. "Sop_1double__mass".
	Dir      string
	Sections []Section
}

// Section returns the content of the file at path.
func (a *Asset) Section(path string) ([]byte, bool) {
	for _, s := range a.Sections {
		if s.Path == path {
			return s.Data, true
		}
	}
	return nil, false
}

// Operator returns the named section of the operator directory.
func (a *Asset) Operator(name string) ([]byte, bool) {
	return a.Section(path.Join(a.Dir, name))
}

type view struct {
	*decl.Declaration
	Table    string
	Dir      string
	Sections []string
}

// escapeSection encodes a section name as a file name the way hotl does:
// "_" doubles and "/" becomes "_1".
func escapeSection(name string) string {
	return strings.NewReplacer("_", "__", "/", "_1").Replace(name)
}

// Generate renders the library of d.
func Generate(d *decl.Declaration) (*Asset, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("scaffold: %w", err)
	}
	dir := escapeSection(operatorTable + "/" + d.Name)
	v := view{Declaration: d, Table: operatorTable, Dir: dir}
	for _, st := range operatorTemplates {
		if st.section != SectionList {
			v.Sections = append(v.Sections, st.section)
		}
	}
	a := &Asset{Name: d.Name, Dir: dir}
	render := func(prefix, section, file string) error {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, filepath.Base(file), v); err != nil {
			return fmt.Errorf("scaffold: render %s: %w", path.Join(prefix, section), err)
		}
		a.Sections = append(a.Sections, Section{Path: path.Join(prefix, section), Data: buf.Bytes()})
		return nil
	}
	for _, st := range libraryTemplates {
		if err := render("", st.section, st.file); err != nil {
			return nil, err
		}
	}
	a.Sections = append(a.Sections, Section{Path: SectionLibrary, Data: []byte{}})
	for _, st := range operatorTemplates {
		if err := render(dir, st.section, st.file); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WriteDir writes the library to dir/<asset name>.hda/, creating
// directories as needed. Existing files are overwritten. The result can be
// collapsed into a single file with hotl -l.
func (a *Asset) WriteDir(dir string) (string, error) {
	root := filepath.Join(dir, a.Name+".hda")
	for _, s := range a.Sections {
		file := filepath.Join(root, filepath.FromSlash(s.Path))
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return "", fmt.Errorf("scaffold: %w", err)
		}
		if err := os.WriteFile(file, s.Data, 0o644); err != nil {
			return "", fmt.Errorf("scaffold: %w", err)
		}
	}
	return root, nil
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// parmType maps an attribute kind to a DialogScript parameter type.
func parmType(kind string) string {
	switch kind {
	case "int":
		return "integer"
	case "string":
		return "string"
	case "vec3":
		return "vector"
	case "vec4":
		return "vector4"
	}
	return "float"
}

func parmSize(kind string) int {
	k, _ := houdini.ParseKind(kind)
	return k.TupleSize()
}

// defaults renders the default components of p as DialogScript strings.
func defaults(p decl.Param) string {
	kind, _ := houdini.ParseKind(p.Kind)
	def := p.Default
	if def == nil {
		def = houdini.DefaultValue(kind)
	}
	var parts []string
	switch v := def.(type) {
	case []any:
		for _, c := range v {
			parts = append(parts, fmt.Sprint(c))
		}
	case houdini.Vec2:
		parts = formatFloats(v[:])
	case houdini.Vec3:
		parts = formatFloats(v[:])
	case houdini.Vec4:
		parts = formatFloats(v[:])
	case houdini.Mat2:
		parts = formatFloats(v[:])
	case houdini.Mat3:
		parts = formatFloats(v[:])
	case houdini.Mat4:
		parts = formatFloats(v[:])
	default:
		parts = []string{fmt.Sprint(v)}
	}
	for i, s := range parts {
		parts[i] = quote(s)
	}
	return strings.Join(parts, " ")
}

func formatFloats(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return out
}

// inputs yields 0..n-1 for template ranges.
func inputs(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
