package houdini

import (
	"errors"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
)

type wireGeometry struct {
	PointCount     int            `json:"pointCount"`
	PrimitiveCount int            `json:"primitiveCount"`
	VertexCount    int            `json:"vertexCount"`
	Attributes     wireAttributes `json:"attributes"`
	Topology       *wireTopology  `json:"topology,omitempty"`
}

type wireAttributes struct {
	Detail    []wireDetail  `json:"detail"`
	Point     []wireElement `json:"point"`
	Primitive []wireElement `json:"primitive"`
	Vertex    []wireElement `json:"vertex"`
}

type wireDetail struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

type wireElement struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Values any    `json:"values"`
}

type wireTopology struct {
	VertexPoints      []int   `json:"vertexPoints,omitempty"`
	PrimitiveVertices [][]int `json:"primitiveVertices,omitempty"`
}

// Encode writes geos as a JSON array, one entry per output slot; nil
// entries are written as null.
func Encode(geos []*Geometry, opts ...EncodeOpt) ([]byte, error) {
	opt := lastOpt(opts)
	out := make([]*wireGeometry, len(geos))
	for i, g := range geos {
		if g == nil {
			continue
		}
		w, err := toWire(i, "/"+strconv.Itoa(i), g, opt)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return marshal(out, opt)
}

// EncodeOne writes a single geometry object.
func EncodeOne(g *Geometry, opts ...EncodeOpt) ([]byte, error) {
	if g == nil {
		return nil, &EncodeError{Issue{Input: 0, Code: CodeNoGeometry, Message: "nothing to encode"}}
	}
	opt := lastOpt(opts)
	w, err := toWire(0, "", g, opt)
	if err != nil {
		return nil, err
	}
	return marshal(w, opt)
}

func marshal(v any, opt EncodeOpt) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if opt.Indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return nil, &EncodeError{Issue{Input: -1, Code: CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	return b, nil
}

func toWire(input int, base string, g *Geometry, opt EncodeOpt) (*wireGeometry, error) {
	w := &wireGeometry{
		PointCount:     g.counts.Points,
		PrimitiveCount: g.counts.Primitives,
		VertexCount:    g.counts.Vertices,
		Attributes: wireAttributes{
			Detail:    []wireDetail{},
			Point:     []wireElement{},
			Primitive: []wireElement{},
			Vertex:    []wireElement{},
		},
	}
	for _, class := range Classes {
		i := 0
		for a := range g.AttributesOf(class) {
			if opt.Mode == EncodePreserve && a.presence.DefaultOnly() {
				continue
			}
			path := base + "/attributes/" + class.String() + "/" + strconv.Itoa(i)
			if err := checkForEncode(input, path, a, g.counts); err != nil {
				return nil, err
			}
			switch class {
			case ClassDetail:
				var v any = a.data
				if !a.array {
					v = reflect.ValueOf(a.data).Index(0).Interface()
				}
				w.Attributes.Detail = append(w.Attributes.Detail, wireDetail{Name: a.name, Kind: a.kind.String(), Value: v})
			case ClassPoint:
				w.Attributes.Point = append(w.Attributes.Point, wireElement{Name: a.name, Kind: a.kind.String(), Values: a.data})
			case ClassPrimitive:
				w.Attributes.Primitive = append(w.Attributes.Primitive, wireElement{Name: a.name, Kind: a.kind.String(), Values: a.data})
			case ClassVertex:
				w.Attributes.Vertex = append(w.Attributes.Vertex, wireElement{Name: a.name, Kind: a.kind.String(), Values: a.data})
			}
			i++
		}
	}
	if t := g.topo; t != nil {
		w.Topology = &wireTopology{VertexPoints: t.vertexPoints, PrimitiveVertices: t.primitiveVertices}
	}
	return w, nil
}

// checkForEncode applies the same boundary the decoder enforces, so nothing
// is written that could not be read back.
func checkForEncode(input int, path string, a *Attribute, counts Counts) error {
	if _, err := ValidateDescriptor(a.Descriptor().Raw(a.Len()), counts); err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			return &EncodeError{schemaIssue(input, path, se)}
		}
		return err
	}
	if bad, ok := checkFinite(a.data); !ok {
		elem := path + "/values/" + strconv.Itoa(bad)
		if a.class == ClassDetail {
			elem = path + "/value"
			if a.array {
				elem += "/" + strconv.Itoa(bad)
			}
		}
		return &EncodeError{Issue{Input: input, Path: elem, Code: CodeInvalidType, Class: a.class.String(), Name: a.name,
			Kind: a.kind.String(), Message: "non-finite float cannot be encoded"}}
	}
	return nil
}
