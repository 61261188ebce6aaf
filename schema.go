package houdini

import (
	"fmt"
	"iter"
)

// Counts holds the element counts of one geometry. The detail class always
// has exactly one element.
type Counts struct {
	Points     int
	Primitives int
	Vertices   int
}

// Of returns the element count for class.
func (c Counts) Of(class AttributeClass) int {
	switch class {
	case ClassPoint:
		return c.Points
	case ClassPrimitive:
		return c.Primitives
	case ClassVertex:
		return c.Vertices
	default:
		return 1
	}
}

// RawDescriptor is an attribute descriptor as read from (or about to be
// written to) the wire, before validation.
type RawDescriptor struct {
	Name  string
	Class string // Wire tag: detail, point, primitive or vertex.
	Kind  string // Wire tag: int, float, string, vec2, ...
	Array bool   // The value is a JSON array of elements.
	Len   int    // Number of elements carried.
}

// Descriptor is the canonical, validated form of an attribute descriptor.
type Descriptor struct {
	Name  string
	Class AttributeClass
	Kind  AttributeKind
	Array bool
}

// ValidateDescriptor checks raw against the exchange rules and the element
// counts of the enclosing geometry. Name uniqueness is a property of the
// whole geometry and is checked separately by the decoder and the builder.
func ValidateDescriptor(raw RawDescriptor, counts Counts) (Descriptor, error) {
	class, ok := ParseClass(raw.Class)
	if !ok {
		return Descriptor{}, &SchemaError{Code: CodeUnsupportedKind, Name: raw.Name, Kind: raw.Kind,
			Message: fmt.Sprintf("unknown attribute class %q", raw.Class)}
	}
	fail := func(code, format string, a ...any) (Descriptor, error) {
		return Descriptor{}, &SchemaError{Code: code, Class: class, Name: raw.Name, Kind: raw.Kind, Message: fmt.Sprintf(format, a...)}
	}
	if raw.Name == "" {
		return fail(CodeInvalidName, "attribute name is empty")
	}
	if isIntrinsicName(raw.Name) {
		return fail(CodeUnsupportedKind, "intrinsic attributes cannot be exchanged")
	}
	kind, ok := ParseKind(raw.Kind)
	if !ok {
		return fail(CodeUnsupportedKind, "unsupported attribute kind %q", raw.Kind)
	}
	if raw.Array && class != ClassDetail {
		return fail(CodeUnsupportedKind, "array values are only supported on detail attributes")
	}
	switch {
	case class != ClassDetail && raw.Len != counts.Of(class):
		return fail(CodeCardinalityMismatch, "got %d values, expected %d", raw.Len, counts.Of(class))
	case class == ClassDetail && !raw.Array && raw.Len != 1:
		return fail(CodeCardinalityMismatch, "scalar detail attribute carries %d values", raw.Len)
	}
	return Descriptor{Name: raw.Name, Class: class, Kind: kind, Array: raw.Array}, nil
}

// Raw returns the wire form of d for a column of n elements.
func (d Descriptor) Raw(n int) RawDescriptor {
	return RawDescriptor{Name: d.Name, Class: d.Class.String(), Kind: d.Kind.String(), Array: d.Array, Len: n}
}

// namespace tracks attribute names per class within one geometry.
type namespace map[AttributeClass]map[string]struct{}

func (ns namespace) claim(d Descriptor) error {
	names := ns[d.Class]
	if names == nil {
		names = make(map[string]struct{})
		ns[d.Class] = names
	}
	if _, dup := names[d.Name]; dup {
		return &SchemaError{Code: CodeDuplicateName, Class: d.Class, Name: d.Name, Kind: d.Kind.String(),
			Message: "attribute name already used in this class"}
	}
	names[d.Name] = struct{}{}
	return nil
}

// AttributeSpec declares an attribute a node expects on one of its inputs.
type AttributeSpec struct {
	Class    AttributeClass
	Name     string
	Kind     AttributeKind
	Array    bool // Detail only.
	Optional bool
	// Default replaces the per-kind default when an optional attribute is
	// absent. Arrays take a slice of elements; everything else one element.
	Default any
}

type declared struct {
	AttributeSpec
	fill any // Column substituted when absent: one element, or the array.
}

type specKey struct {
	class AttributeClass
	name  string
}

// Schema is the ordered set of attributes declared for one input slot.
// It is immutable once built and safe for concurrent use.
type Schema struct {
	specs []declared
	index map[specKey]int
}

// NewSchema validates specs and returns the schema they describe.
func NewSchema(specs ...AttributeSpec) (*Schema, error) {
	s := &Schema{index: make(map[specKey]int, len(specs))}
	ns := namespace{}
	for _, sp := range specs {
		raw := RawDescriptor{Name: sp.Name, Class: sp.Class.String(), Kind: sp.Kind.String(), Array: sp.Array, Len: 1}
		if sp.Class != ClassDetail {
			raw.Len = 0
		}
		d, err := ValidateDescriptor(raw, Counts{})
		if err != nil {
			return nil, err
		}
		if err := ns.claim(d); err != nil {
			return nil, err
		}
		fill, err := defaultFill(sp)
		if err != nil {
			return nil, &SchemaError{Code: CodeInvalidDefault, Class: sp.Class, Name: sp.Name, Kind: sp.Kind.String(), Message: err.Error()}
		}
		s.index[specKey{sp.Class, sp.Name}] = len(s.specs)
		s.specs = append(s.specs, declared{AttributeSpec: sp, fill: fill})
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for package
// level declarations.
func MustSchema(specs ...AttributeSpec) *Schema {
	s, err := NewSchema(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the declaration of (class, name).
func (s *Schema) Lookup(class AttributeClass, name string) (AttributeSpec, bool) {
	if s == nil {
		return AttributeSpec{}, false
	}
	i, ok := s.index[specKey{class, name}]
	if !ok {
		return AttributeSpec{}, false
	}
	return s.specs[i].AttributeSpec, true
}

// Specs yields the declarations in declared order.
func (s *Schema) Specs() iter.Seq[AttributeSpec] {
	return func(yield func(AttributeSpec) bool) {
		if s == nil {
			return
		}
		for _, d := range s.specs {
			if !yield(d.AttributeSpec) {
				return
			}
		}
	}
}

func (s *Schema) declaredOf(class AttributeClass) iter.Seq[declared] {
	return func(yield func(declared) bool) {
		if s == nil {
			return
		}
		for _, d := range s.specs {
			if d.Class == class && !yield(d) {
				return
			}
		}
	}
}

// Len returns the number of declared attributes.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.specs)
}
