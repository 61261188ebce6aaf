package houdini_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	houdini "github.com/luxalpa/houdini-node"
)

func mustDecodeOne(t *testing.T, js string, opts ...houdini.DecodeOpt) *houdini.Geometry {
	t.Helper()
	g, err := houdini.DecodeOne([]byte(js), opts...)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return g
}

func TestDecode_PointMass(t *testing.T) {
	g := mustDecodeOne(t, `{"pointCount":3,"attributes":{"point":[{"name":"mass","kind":"float","values":[1,2,3]}]}}`)
	if g.ElementCount(houdini.ClassPoint) != 3 || g.ElementCount(houdini.ClassDetail) != 1 {
		t.Fatalf("counts: %+v", g.Counts())
	}
	a, ok := g.Get(houdini.ClassPoint, "mass")
	if !ok {
		t.Fatalf("mass missing")
	}
	if a.Kind() != houdini.KindFloat || a.Len() != 3 || a.Presence() != houdini.PresenceSeen {
		t.Fatalf("unexpected attribute %v (%v)", a, a.Presence())
	}
	vals, err := houdini.Values[float64](a)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if !slices.Equal(vals, []float64{1, 2, 3}) {
		t.Fatalf("values = %v", vals)
	}
	if _, err := houdini.Values[int64](a); !errors.Is(err, houdini.ErrKindMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}
}

func TestDecode_AllKinds(t *testing.T) {
	js := `{
		"pointCount": 2, "primitiveCount": 1, "vertexCount": 2,
		"attributes": {
			"detail": [
				{"name": "frame", "kind": "int", "value": 12},
				{"name": "label", "kind": "string", "value": "rock"},
				{"name": "up", "kind": "vec3", "value": [0, 1, 0]},
				{"name": "offsets", "kind": "vec3", "value": [[1, 2, 3], [4, 5, 6]]},
				{"name": "weights", "kind": "float", "value": [0.5, 0.25]},
				{"name": "xform", "kind": "mat3", "value": [1, 0, 0, 0, 1, 0, 0, 0, 1]}
			],
			"point": [
				{"name": "id", "kind": "int", "values": [7, 8]},
				{"name": "uv", "kind": "vec2", "values": [[0, 0], [1, 1]]}
			],
			"primitive": [
				{"name": "orient", "kind": "vec4", "values": [[0, 0, 0, 1]]},
				{"name": "stretch", "kind": "mat2", "values": [[2, 0, 0, 1]]}
			],
			"vertex": [
				{"name": "name", "kind": "string", "values": ["a", "b"]}
			]
		}
	}`
	g := mustDecodeOne(t, js)

	frame, _ := g.Get(houdini.ClassDetail, "frame")
	if v, err := houdini.Value[int64](frame); err != nil || v != 12 {
		t.Fatalf("frame = %v, %v", v, err)
	}
	up, _ := g.Get(houdini.ClassDetail, "up")
	if up.IsArray() {
		t.Fatalf("vec3 written as a list of numbers must be a single vector")
	}
	if v, _ := houdini.Value[houdini.Vec3](up); v != (houdini.Vec3{0, 1, 0}) {
		t.Fatalf("up = %v", v)
	}
	offsets, _ := g.Get(houdini.ClassDetail, "offsets")
	if !offsets.IsArray() || offsets.Len() != 2 {
		t.Fatalf("offsets must be an array of two vectors: %v", offsets)
	}
	if _, err := houdini.Value[houdini.Vec3](offsets); err == nil {
		t.Fatalf("Value on an array attribute must fail")
	}
	weights, _ := g.Get(houdini.ClassDetail, "weights")
	if !weights.IsArray() {
		t.Fatalf("float list must be an array value")
	}
	uv, _ := g.Get(houdini.ClassPoint, "uv")
	if v, err := houdini.At[houdini.Vec2](uv, 1); err != nil || v != (houdini.Vec2{1, 1}) {
		t.Fatalf("uv[1] = %v, %v", v, err)
	}
	stretch, _ := g.Get(houdini.ClassPrimitive, "stretch")
	if v, err := houdini.At[houdini.Mat2](stretch, 0); err != nil || v != (houdini.Mat2{2, 0, 0, 1}) {
		t.Fatalf("stretch[0] = %v, %v", v, err)
	}
	if got := g.Names(houdini.ClassDetail); !slices.Equal(got, []string{"frame", "label", "up", "offsets", "weights", "xform"}) {
		t.Fatalf("detail order = %v", got)
	}
	if g.NumAttributes(houdini.ClassVertex) != 1 {
		t.Fatalf("vertex attributes = %d", g.NumAttributes(houdini.ClassVertex))
	}
}

func TestDecode_OptionalDefaults(t *testing.T) {
	s := houdini.MustSchema(
		houdini.AttributeSpec{Class: houdini.ClassDetail, Name: "label", Kind: houdini.KindString, Optional: true},
		houdini.AttributeSpec{Class: houdini.ClassDetail, Name: "weights", Kind: houdini.KindFloat, Array: true, Optional: true},
		houdini.AttributeSpec{Class: houdini.ClassDetail, Name: "orient", Kind: houdini.KindVec4, Optional: true},
		houdini.AttributeSpec{Class: houdini.ClassPoint, Name: "Cd", Kind: houdini.KindVec3, Optional: true, Default: houdini.Vec3{1, 1, 1}},
		houdini.AttributeSpec{Class: houdini.ClassPoint, Name: "pscale", Kind: houdini.KindFloat, Optional: true},
	)
	g := mustDecodeOne(t, `{"pointCount":2,"attributes":{"point":[{"name":"pscale","kind":"float","values":[3,4]}]}}`,
		houdini.DecodeOpt{Inputs: []*houdini.Schema{s}})

	label, ok := g.Get(houdini.ClassDetail, "label")
	if !ok {
		t.Fatalf("label not materialized")
	}
	if v, _ := houdini.Value[string](label); v != "" {
		t.Fatalf("label = %q", v)
	}
	if !label.Presence().DefaultOnly() {
		t.Fatalf("label presence = %v", label.Presence())
	}
	weights, _ := g.Get(houdini.ClassDetail, "weights")
	if !weights.IsArray() || weights.Len() != 0 {
		t.Fatalf("weights = %v", weights)
	}
	orient, _ := g.Get(houdini.ClassDetail, "orient")
	if v, _ := houdini.Value[houdini.Vec4](orient); v != (houdini.Vec4{0, 0, 0, 1}) {
		t.Fatalf("orient = %v", v)
	}
	cd, _ := g.Get(houdini.ClassPoint, "Cd")
	vals, _ := houdini.Values[houdini.Vec3](cd)
	if len(vals) != 2 || vals[0] != (houdini.Vec3{1, 1, 1}) || vals[1] != (houdini.Vec3{1, 1, 1}) {
		t.Fatalf("Cd = %v", vals)
	}
	pscale, _ := g.Get(houdini.ClassPoint, "pscale")
	if pscale.Presence().DefaultOnly() {
		t.Fatalf("pscale was sent and must not be default-only")
	}
}

func TestDecode_SchemaViolations(t *testing.T) {
	s := houdini.MustSchema(houdini.AttributeSpec{Class: houdini.ClassPoint, Name: "mass", Kind: houdini.KindFloat})
	opt := houdini.DecodeOpt{Inputs: []*houdini.Schema{s}}

	_, err := houdini.Decode([]byte(`{"pointCount":1}`), opt)
	iss, ok := houdini.AsIssue(err)
	if !ok || iss.Code != houdini.CodeRequired || iss.Name != "mass" || iss.Class != "point" || iss.Input != 0 {
		t.Fatalf("required: %+v (%v)", iss, err)
	}

	_, err = houdini.Decode([]byte(`{"pointCount":1,"attributes":{"point":[{"name":"mass","kind":"int","values":[1]}]}}`), opt)
	if houdini.ErrorCode(err) != houdini.CodeInvalidType {
		t.Fatalf("kind mismatch: %v", err)
	}

	// Only slot 0 is declared; slot 1 accepts anything.
	geos, err := houdini.Decode([]byte(`[{"pointCount":1,"attributes":{"point":[{"name":"mass","kind":"float","values":[1]}]}},{"pointCount":0}]`), opt)
	if err != nil || len(geos) != 2 {
		t.Fatalf("slots: %v %v", geos, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name  string
		js    string
		code  string
		path  string
		input int
	}{
		{"negative count", `{"pointCount":-1}`, houdini.CodeInvalidCount, "/pointCount", 0},
		{"fractional count", `{"pointCount":1.5}`, houdini.CodeInvalidCount, "/pointCount", 0},
		{"cardinality", `{"pointCount":2,"attributes":{"point":[{"name":"m","kind":"float","values":[1]}]}}`, houdini.CodeCardinalityMismatch, "/attributes/point/0", 0},
		{"dict kind", `{"attributes":{"detail":[{"name":"d","kind":"dict","value":{"a":1}}]}}`, houdini.CodeUnsupportedKind, "/attributes/detail/0", 0},
		{"intrinsic kind", `{"primitiveCount":1,"attributes":{"primitive":[{"name":"i","kind":"intrinsic","values":[1]}]}}`, houdini.CodeUnsupportedKind, "/attributes/primitive/0", 0},
		{"intrinsic name", `{"attributes":{"detail":[{"name":"intrinsic:area","kind":"float","value":1}]}}`, houdini.CodeUnsupportedKind, "/attributes/detail/0", 0},
		{"dict value", `{"attributes":{"detail":[{"name":"d","kind":"float","value":{"a":1}}]}}`, houdini.CodeUnsupportedKind, "/attributes/detail/0/value", 0},
		{"array on point", `{"pointCount":1,"attributes":{"point":[{"name":"a","kind":"int","values":[[1,2]]}]}}`, houdini.CodeUnsupportedKind, "/attributes/point/0/values/0", 0},
		{"nested detail array", `{"attributes":{"detail":[{"name":"a","kind":"int","value":[[1],[2]]}]}}`, houdini.CodeUnsupportedKind, "/attributes/detail/0/value/0", 0},
		{"int needs integer literal", `{"attributes":{"detail":[{"name":"n","kind":"int","value":1.5}]}}`, houdini.CodeInvalidType, "/attributes/detail/0/value", 0},
		{"short vector", `{"pointCount":1,"attributes":{"point":[{"name":"P","kind":"vec3","values":[[1,2]]}]}}`, houdini.CodeInvalidType, "/attributes/point/0/values/0", 0},
		{"string for float", `{"pointCount":2,"attributes":{"point":[{"name":"m","kind":"float","values":[1,"x"]}]}}`, houdini.CodeInvalidType, "/attributes/point/0/values/1", 0},
		{"duplicate name", `{"pointCount":1,"attributes":{"point":[{"name":"m","kind":"float","values":[1]},{"name":"m","kind":"int","values":[1]}]}}`, houdini.CodeDuplicateName, "/attributes/point/1/name", 0},
		{"empty name", `{"attributes":{"detail":[{"name":"","kind":"int","value":1}]}}`, houdini.CodeInvalidName, "/attributes/detail/0", 0},
		{"unknown geometry key", `{"foo":1}`, houdini.CodeUnknownKey, "/foo", 0},
		{"unknown class", `{"attributes":{"face":[]}}`, houdini.CodeUnknownKey, "/attributes/face", 0},
		{"values on detail", `{"attributes":{"detail":[{"name":"n","kind":"int","values":[1]}]}}`, houdini.CodeUnknownKey, "/attributes/detail/0/values", 0},
		{"missing value", `{"attributes":{"detail":[{"name":"n","kind":"int"}]}}`, houdini.CodeRequired, "/attributes/detail/0", 0},
		{"duplicate json key", `{"pointCount":1,"pointCount":2}`, houdini.CodeDuplicateKey, "/pointCount", -1},
		{"slot not an object", `[1]`, houdini.CodeInvalidType, "/0", 0},
		{"scalar payload", `"x"`, houdini.CodeInvalidType, "/", -1},
		{"second slot", `[null,{"foo":1}]`, houdini.CodeUnknownKey, "/1/foo", 1},
		{"topology out of range", `{"pointCount":1,"vertexCount":1,"topology":{"vertexPoints":[3]}}`, houdini.CodeInvalidTopology, "/topology/vertexPoints/0", 0},
		{"topology length", `{"pointCount":1,"primitiveCount":1,"vertexCount":1,"topology":{"primitiveVertices":[]}}`, houdini.CodeInvalidTopology, "/topology/primitiveVertices", 0},
		{"truncated", `{"pointCount":`, houdini.CodeParseError, "", -1},
		{"empty", ``, houdini.CodeParseError, "", -1},
		{"missing colon", `{"pointCount" 3}`, houdini.CodeParseError, "", -1},
		{"missing comma", `{"pointCount":3 "vertexCount":0}`, houdini.CodeParseError, "", -1},
		{"missing comma between slots", `[{"pointCount":1} {"pointCount":2}]`, houdini.CodeParseError, "", -1},
		{"trailing comma", `{"pointCount":3,}`, houdini.CodeParseError, "", -1},
		{"missing comma in values", `{"pointCount":3,"attributes":{"point":[{"name":"m","kind":"float","values":[1 2 3]}]}}`, houdini.CodeParseError, "", -1},
		{"count over limit", `{"pointCount":9000000000000000000}`, houdini.CodeInvalidCount, "/pointCount", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			geos, err := houdini.Decode([]byte(tc.js))
			if err == nil {
				t.Fatalf("expected error, got %v", geos)
			}
			if geos != nil {
				t.Fatalf("no partial result expected")
			}
			var de *houdini.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if de.Code != tc.code || de.Path != tc.path || de.Input != tc.input {
				t.Fatalf("want %s at %q (input %d), got %s at %q (input %d): %v",
					tc.code, tc.path, tc.input, de.Code, de.Path, de.Input, err)
			}
		})
	}
}

func TestDecode_SchemaErrorsAreMatchable(t *testing.T) {
	_, err := houdini.Decode([]byte(`{"attributes":{"detail":[{"name":"d","kind":"dict","value":{}}]}}`))
	if !errors.Is(err, houdini.ErrUnsupportedAttributeKind) {
		t.Fatalf("expected ErrUnsupportedAttributeKind through the chain, got %v", err)
	}
	iss, _ := houdini.AsIssue(err)
	if iss.Name != "d" || iss.Kind != "dict" || iss.Class != "detail" {
		t.Fatalf("issue context: %+v", iss)
	}
}

func TestDecode_Slots(t *testing.T) {
	geos, err := houdini.Decode([]byte(`[{"pointCount":1}, null]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(geos) != 2 || geos[0] == nil || geos[1] != nil {
		t.Fatalf("slots = %v", geos)
	}
	in := houdini.Inputs(geos)
	if _, err := in.Geometry(0); err != nil {
		t.Fatalf("slot 0: %v", err)
	}
	for _, i := range []int{1, 2} {
		_, err := in.Geometry(i)
		if iss, _ := houdini.AsIssue(err); iss.Code != houdini.CodeGeometryMissing || iss.Input != i {
			t.Fatalf("slot %d: %v", i, err)
		}
	}
}

func TestDecodeOne_NoGeometry(t *testing.T) {
	for _, js := range []string{`[]`, `[null]`} {
		if _, err := houdini.DecodeOne([]byte(js)); houdini.ErrorCode(err) != houdini.CodeNoGeometry {
			t.Fatalf("%s: %v", js, err)
		}
	}
}

func TestDecode_Topology(t *testing.T) {
	g := mustDecodeOne(t, `{"pointCount":3,"primitiveCount":1,"vertexCount":3,
		"topology":{"vertexPoints":[2,1,0],"primitiveVertices":[[0,1,2]]}}`)
	topo := g.Topology()
	if !topo.HasVertexPoints() || !topo.HasPrimitiveVertices() {
		t.Fatalf("topology incomplete")
	}
	if got := topo.PrimitivePoints(0); !slices.Equal(got, []int{2, 1, 0}) {
		t.Fatalf("primitive points = %v", got)
	}
	vp := topo.VertexPoints()
	vp[0] = 99
	if topo.VertexPoints()[0] != 2 {
		t.Fatalf("topology must not be aliased")
	}
	if mustDecodeOne(t, `{"pointCount":1}`).Topology() != nil {
		t.Fatalf("absent topology must be nil")
	}
}

func TestDecode_Strictness(t *testing.T) {
	js := []byte(`{"pointCount":1,"pointCount":1}`)

	var warned []houdini.Issue
	_, err := houdini.Decode(js, houdini.DecodeOpt{
		OnDuplicateKey: houdini.Warn,
		OnWarning:      func(iss houdini.Issue) { warned = append(warned, iss) },
	})
	if err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(warned) != 1 || warned[0].Code != houdini.CodeDuplicateKey {
		t.Fatalf("warnings = %v", warned)
	}

	if _, err := houdini.Decode(js, houdini.DecodeOpt{OnDuplicateKey: houdini.Ignore}); err != nil {
		t.Fatalf("ignore mode: %v", err)
	}

	if _, err := houdini.Decode(js, houdini.DecodeOpt{MaxBytes: 8}); houdini.ErrorCode(err) != houdini.CodeTooLarge {
		t.Fatalf("max bytes: %v", err)
	}

	deep := []byte(`{"attributes":{"detail":[{"name":"a","kind":"vec2","value":[[1,2]]}]}}`)
	if _, err := houdini.Decode(deep, houdini.DecodeOpt{MaxDepth: 4}); houdini.ErrorCode(err) != houdini.CodeParseError {
		t.Fatalf("max depth: %v", err)
	}
	if _, err := houdini.Decode(deep, houdini.DecodeOpt{MaxDepth: 6}); err != nil {
		t.Fatalf("within depth: %v", err)
	}
}

func TestDecode_ElementLimit(t *testing.T) {
	schema := houdini.MustSchema(houdini.AttributeSpec{Class: houdini.ClassPoint, Name: "m", Kind: houdini.KindFloat, Optional: true})
	huge := []byte(`{"pointCount":9000000000000000000}`)
	_, err := houdini.Decode(huge, houdini.DecodeOpt{Inputs: []*houdini.Schema{schema}})
	if houdini.ErrorCode(err) != houdini.CodeInvalidCount {
		t.Fatalf("huge count: %v", err)
	}

	opt := houdini.DecodeOpt{Inputs: []*houdini.Schema{schema}, MaxElements: 3}
	if _, err := houdini.Decode([]byte(`{"pointCount":4}`), opt); houdini.ErrorCode(err) != houdini.CodeInvalidCount {
		t.Fatalf("over custom limit: %v", err)
	}
	g, err := houdini.DecodeOne([]byte(`{"pointCount":3}`), opt)
	if err != nil {
		t.Fatalf("within limit: %v", err)
	}
	m, _ := g.Get(houdini.ClassPoint, "m")
	if m.Len() != 3 {
		t.Fatalf("default column length = %d", m.Len())
	}
}

func TestDecode_DefaultDepthLimit(t *testing.T) {
	deep := []byte(strings.Repeat("[", houdini.DefaultMaxDepth+1) + strings.Repeat("]", houdini.DefaultMaxDepth+1))
	if _, err := houdini.Decode(deep); houdini.ErrorCode(err) != houdini.CodeParseError {
		t.Fatalf("zero options must cap depth: %v", err)
	}
	unclosed := []byte(strings.Repeat("[", 1_000_000))
	if _, err := houdini.Decode(unclosed); houdini.ErrorCode(err) != houdini.CodeParseError {
		t.Fatalf("unclosed nesting: %v", err)
	}
	within := []byte(strings.Repeat("[", houdini.DefaultMaxDepth) + strings.Repeat("]", houdini.DefaultMaxDepth))
	if _, err := houdini.Decode(within, houdini.DecodeOpt{MaxDepth: -1}); houdini.ErrorCode(err) != houdini.CodeInvalidType {
		t.Fatalf("disabled limit should reach the shape check: %v", err)
	}
}
