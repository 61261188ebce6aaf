package houdini

import (
	"fmt"
	"slices"
)

// Topology is the optional connectivity of a geometry: which point each
// vertex references and which vertices each primitive is made of.
type Topology struct {
	vertexPoints      []int
	primitiveVertices [][]int
}

// NewTopology copies its arguments. Either may be nil when the host does not
// send that part.
func NewTopology(vertexPoints []int, primitiveVertices [][]int) *Topology {
	t := &Topology{vertexPoints: slices.Clone(vertexPoints)}
	if primitiveVertices != nil {
		t.primitiveVertices = make([][]int, len(primitiveVertices))
		for i, vs := range primitiveVertices {
			t.primitiveVertices[i] = slices.Clone(vs)
		}
	}
	return t
}

// HasVertexPoints reports whether the vertex to point mapping is present.
func (t *Topology) HasVertexPoints() bool { return t != nil && t.vertexPoints != nil }

// HasPrimitiveVertices reports whether primitive vertex lists are present.
func (t *Topology) HasPrimitiveVertices() bool { return t != nil && t.primitiveVertices != nil }

// VertexPoints returns a copy of the point index of every vertex.
func (t *Topology) VertexPoints() []int {
	if t == nil {
		return nil
	}
	return slices.Clone(t.vertexPoints)
}

// PrimitiveVertices returns a copy of the vertex indices of primitive p.
func (t *Topology) PrimitiveVertices(p int) []int {
	if t == nil || p < 0 || p >= len(t.primitiveVertices) {
		return nil
	}
	return slices.Clone(t.primitiveVertices[p])
}

// PrimitivePoints resolves the points of primitive p through its vertices.
func (t *Topology) PrimitivePoints(p int) []int {
	vs := t.PrimitiveVertices(p)
	if vs == nil || !t.HasVertexPoints() {
		return nil
	}
	pts := make([]int, len(vs))
	for i, v := range vs {
		pts[i] = t.vertexPoints[v]
	}
	return pts
}

func (t *Topology) check(c Counts) (string, error) {
	if t.vertexPoints != nil {
		if len(t.vertexPoints) != c.Vertices {
			return "/vertexPoints", fmt.Errorf("got %d entries, expected vertexCount %d", len(t.vertexPoints), c.Vertices)
		}
		for i, p := range t.vertexPoints {
			if p < 0 || p >= c.Points {
				return fmt.Sprintf("/vertexPoints/%d", i), fmt.Errorf("point index %d out of range [0,%d)", p, c.Points)
			}
		}
	}
	if t.primitiveVertices != nil {
		if len(t.primitiveVertices) != c.Primitives {
			return "/primitiveVertices", fmt.Errorf("got %d entries, expected primitiveCount %d", len(t.primitiveVertices), c.Primitives)
		}
		for i, vs := range t.primitiveVertices {
			for j, v := range vs {
				if v < 0 || v >= c.Vertices {
					return fmt.Sprintf("/primitiveVertices/%d/%d", i, j), fmt.Errorf("vertex index %d out of range [0,%d)", v, c.Vertices)
				}
			}
		}
	}
	return "", nil
}

func (t *Topology) equal(o *Topology) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !slices.Equal(t.vertexPoints, o.vertexPoints) || len(t.primitiveVertices) != len(o.primitiveVertices) {
		return false
	}
	if (t.vertexPoints == nil) != (o.vertexPoints == nil) || (t.primitiveVertices == nil) != (o.primitiveVertices == nil) {
		return false
	}
	for i := range t.primitiveVertices {
		if !slices.Equal(t.primitiveVertices[i], o.primitiveVertices[i]) {
			return false
		}
	}
	return true
}
