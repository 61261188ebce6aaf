package houdini

import (
	"errors"
	"fmt"
)

// Builder assembles an output Geometry. Every write is checked against the
// exchange rules; the first violation sticks and is returned by Build.
//
//	b := houdini.NewBuilder(3, 0, 0)
//	houdini.Set(b, houdini.ClassPoint, "mass", []float64{2, 4, 6})
//	out, err := b.Build()
type Builder struct {
	g    *Geometry
	ns   namespace
	err  error
	done bool
}

// NewBuilder starts a geometry with the given element counts.
func NewBuilder(points, prims, verts int) *Builder {
	b := &Builder{ns: namespace{}}
	c := Counts{Points: points, Primitives: prims, Vertices: verts}
	if points < 0 || prims < 0 || verts < 0 {
		b.err = &SchemaError{Code: CodeInvalidCount, Message: fmt.Sprintf("negative element count %+v", c)}
	}
	b.g = newGeometry(c)
	return b
}

// Err returns the first error recorded so far.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) ready() bool {
	if b.done {
		b.fail(errors.New("houdini: builder used after Build"))
	}
	return b.err == nil
}

// put validates raw and stores col (which the caller already owns).
func (b *Builder) put(raw RawDescriptor, col any, presence Presence) {
	if !b.ready() {
		return
	}
	d, err := ValidateDescriptor(raw, b.g.counts)
	if err != nil {
		b.fail(err)
		return
	}
	if err := b.ns.claim(d); err != nil {
		b.fail(err)
		return
	}
	b.g.add(&Attribute{name: d.Name, class: d.Class, kind: d.Kind, array: d.Array, data: col, presence: presence})
}

// Set writes a point, primitive or vertex attribute. values must hold one
// element per element of class. The slice is copied.
func Set[T Scalar](b *Builder, class AttributeClass, name string, values []T) {
	col := make([]T, len(values))
	copy(col, values)
	raw := RawDescriptor{Name: name, Class: class.String(), Kind: KindOf[T]().String(), Len: len(col)}
	b.put(raw, col, PresenceSeen)
}

// SetDetail writes a scalar detail attribute.
func SetDetail[T Scalar](b *Builder, name string, value T) {
	raw := RawDescriptor{Name: name, Class: ClassDetail.String(), Kind: KindOf[T]().String(), Len: 1}
	b.put(raw, []T{value}, PresenceSeen)
}

// SetDetailArray writes an array-valued detail attribute. A nil slice is
// written as an empty array.
func SetDetailArray[T Scalar](b *Builder, name string, values []T) {
	col := make([]T, len(values))
	copy(col, values)
	raw := RawDescriptor{Name: name, Class: ClassDetail.String(), Kind: KindOf[T]().String(), Array: true, Len: len(col)}
	b.put(raw, col, PresenceSeen)
}

// Copy passes attributes of class through from src unchanged. With no names
// every attribute of that class is copied. Cardinality is checked against
// the builder's counts, so copying point data requires the same point count.
func Copy(b *Builder, src *Geometry, class AttributeClass, names ...string) {
	if src == nil {
		b.fail(&SchemaError{Code: CodeGeometryMissing, Class: class, Message: "copy from nil geometry"})
		return
	}
	if len(names) == 0 {
		names = src.Names(class)
	}
	for _, name := range names {
		a, ok := src.Get(class, name)
		if !ok {
			b.fail(&SchemaError{Code: CodeRequired, Class: class, Name: name,
				Message: "attribute not found in source geometry"})
			return
		}
		b.put(a.Descriptor().Raw(a.Len()), cloneColumn(a.data), a.presence|PresenceSeen)
	}
}

// SetTopology attaches connectivity. Indices are checked against the
// builder's counts.
func (b *Builder) SetTopology(t *Topology) {
	if !b.ready() || t == nil {
		return
	}
	if path, err := t.check(b.g.counts); err != nil {
		b.fail(&SchemaError{Code: CodeInvalidTopology, Message: "topology" + path + ": " + err.Error()})
		return
	}
	b.g.topo = t
}

// Build returns the finished geometry. The builder cannot be used afterwards.
func (b *Builder) Build() (*Geometry, error) {
	if !b.ready() {
		return nil, b.err
	}
	b.done = true
	return b.g, nil
}
