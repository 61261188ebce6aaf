package houdini

import (
	"fmt"
)

// Attribute is one named, typed column of a geometry. Its data cannot be
// modified after construction; accessors hand out copies.
type Attribute struct {
	name     string
	class    AttributeClass
	kind     AttributeKind
	array    bool
	data     any // []int64, []float64, []string, []Vec2, ...
	presence Presence
}

func (a *Attribute) Name() string           { return a.name }
func (a *Attribute) Class() AttributeClass  { return a.class }
func (a *Attribute) Kind() AttributeKind    { return a.kind }
func (a *Attribute) Presence() Presence     { return a.presence }
func (a *Attribute) Descriptor() Descriptor { return Descriptor{Name: a.name, Class: a.class, Kind: a.kind, Array: a.array} }

// IsArray reports whether a is an array-valued detail attribute.
func (a *Attribute) IsArray() bool { return a.array }

// Len returns the number of elements: the element count of the class, the
// array length, or 1 for a scalar detail attribute.
func (a *Attribute) Len() int { return columnLen(a.data) }

// Data returns a copy of the typed column ([]int64, []float64, ...).
func (a *Attribute) Data() any { return cloneColumn(a.data) }

func (a *Attribute) String() string {
	return fmt.Sprintf("%s %s %q[%d]", a.class, a.kind, a.name, a.Len())
}

func (a *Attribute) equal(b *Attribute) bool {
	return a.name == b.name && a.class == b.class && a.kind == b.kind && a.array == b.array && columnsEqual(a.data, b.data)
}

func column[T Scalar](a *Attribute) ([]T, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil attribute", ErrKindMismatch)
	}
	col, ok := a.data.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, a.name, a.kind, KindOf[T]())
	}
	return col, nil
}

// Values returns a copy of every element of a as T.
func Values[T Scalar](a *Attribute) ([]T, error) {
	col, err := column[T](a)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(col))
	copy(out, col)
	return out, nil
}

// At returns element i of a as T.
func At[T Scalar](a *Attribute, i int) (T, error) {
	var zero T
	col, err := column[T](a)
	if err != nil {
		return zero, err
	}
	if i < 0 || i >= len(col) {
		return zero, fmt.Errorf("houdini: index %d out of range for %s (len %d)", i, a.name, len(col))
	}
	return col[i], nil
}

// Value returns the single value of a scalar detail attribute.
func Value[T Scalar](a *Attribute) (T, error) {
	var zero T
	if a != nil && (a.class != ClassDetail || a.array) {
		return zero, fmt.Errorf("houdini: %s is not a scalar detail attribute", a.name)
	}
	return At[T](a, 0)
}
