package houdini

import (
	"iter"
)

// Geometry is the unit of exchange: element counts, attribute tables by
// class and optional topology. A Geometry is read-only once constructed by
// Decode or Builder.Build, so it can be shared between goroutines.
type Geometry struct {
	counts Counts
	attrs  [len(Classes)][]*Attribute
	index  map[specKey]*Attribute
	topo   *Topology
}

func newGeometry(counts Counts) *Geometry {
	return &Geometry{counts: counts, index: make(map[specKey]*Attribute)}
}

// add appends a to its class table. Callers have already claimed the name.
func (g *Geometry) add(a *Attribute) {
	g.attrs[a.class] = append(g.attrs[a.class], a)
	g.index[specKey{a.class, a.name}] = a
}

// Counts returns the element counts.
func (g *Geometry) Counts() Counts { return g.counts }

// ElementCount returns the number of elements of class; 1 for detail.
func (g *Geometry) ElementCount(class AttributeClass) int { return g.counts.Of(class) }

// Get looks an attribute up by class and name.
func (g *Geometry) Get(class AttributeClass, name string) (*Attribute, bool) {
	a, ok := g.index[specKey{class, name}]
	return a, ok
}

// AttributesOf yields the attributes of class in declared order. The
// sequence can be ranged over any number of times.
func (g *Geometry) AttributesOf(class AttributeClass) iter.Seq[*Attribute] {
	return func(yield func(*Attribute) bool) {
		if !class.Valid() {
			return
		}
		for _, a := range g.attrs[class] {
			if !yield(a) {
				return
			}
		}
	}
}

// Names returns the attribute names of class in declared order.
func (g *Geometry) Names(class AttributeClass) []string {
	var names []string
	for a := range g.AttributesOf(class) {
		names = append(names, a.name)
	}
	return names
}

// NumAttributes returns the number of attributes of class.
func (g *Geometry) NumAttributes(class AttributeClass) int {
	if !class.Valid() {
		return 0
	}
	return len(g.attrs[class])
}

// Topology returns the connectivity, or nil when the payload carried none.
func (g *Geometry) Topology() *Topology { return g.topo }

// Equal reports value equality: same counts, topology and attributes
// (by class and name, regardless of declaration order).
func (g *Geometry) Equal(o *Geometry) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.counts != o.counts || !g.topo.equal(o.topo) {
		return false
	}
	for _, c := range Classes {
		if len(g.attrs[c]) != len(o.attrs[c]) {
			return false
		}
		for _, a := range g.attrs[c] {
			b, ok := o.Get(c, a.name)
			if !ok || !a.equal(b) {
				return false
			}
		}
	}
	return true
}

// Inputs is the ordered list of geometries handed to a node, one per input
// slot. A nil entry is an unconnected slot.
type Inputs []*Geometry

// Geometry returns the geometry connected to slot i.
func (in Inputs) Geometry(i int) (*Geometry, error) {
	if i < 0 || i >= len(in) || in[i] == nil {
		return nil, &DecodeError{Issue{Input: i, Code: CodeGeometryMissing, Message: "no geometry connected"}}
	}
	return in[i], nil
}
