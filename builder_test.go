package houdini_test

import (
	"errors"
	"slices"
	"testing"

	houdini "github.com/luxalpa/houdini-node"
)

func TestBuilder_EnforcesRules(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *houdini.Builder)
		want  error
	}{
		{"short column", func(b *houdini.Builder) {
			houdini.Set(b, houdini.ClassPoint, "mass", []float64{1})
		}, houdini.ErrCardinalityMismatch},
		{"duplicate name", func(b *houdini.Builder) {
			houdini.Set(b, houdini.ClassPoint, "mass", []float64{1, 2})
			houdini.Set(b, houdini.ClassPoint, "mass", []int64{1, 2})
		}, houdini.ErrDuplicateAttributeName},
		{"intrinsic name", func(b *houdini.Builder) {
			houdini.SetDetail(b, "intrinsic:bounds", 1.0)
		}, houdini.ErrUnsupportedAttributeKind},
		{"empty name", func(b *houdini.Builder) {
			houdini.SetDetail(b, "", int64(1))
		}, houdini.ErrInvalidAttributeName},
		{"detail via Set with two values", func(b *houdini.Builder) {
			houdini.Set(b, houdini.ClassDetail, "n", []int64{1, 2})
		}, houdini.ErrCardinalityMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := houdini.NewBuilder(2, 0, 0)
			tc.build(b)
			g, err := b.Build()
			if g != nil || !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v (%v)", tc.want, err, g)
			}
		})
	}
}

func TestBuilder_FirstErrorSticks(t *testing.T) {
	b := houdini.NewBuilder(1, 0, 0)
	houdini.Set(b, houdini.ClassPoint, "a", []float64{1, 2})
	houdini.Set(b, houdini.ClassPoint, "b", []float64{1})
	if !errors.Is(b.Err(), houdini.ErrCardinalityMismatch) {
		t.Fatalf("err = %v", b.Err())
	}
	if _, err := b.Build(); !errors.Is(err, houdini.ErrCardinalityMismatch) {
		t.Fatalf("build err = %v", err)
	}
}

func TestBuilder_UseAfterBuild(t *testing.T) {
	b := houdini.NewBuilder(0, 0, 0)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	houdini.SetDetail(b, "late", int64(1))
	if b.Err() == nil {
		t.Fatalf("expected error after Build")
	}
	if _, ok := g.Get(houdini.ClassDetail, "late"); ok {
		t.Fatalf("built geometry must not change")
	}
}

func TestBuilder_NegativeCount(t *testing.T) {
	if _, err := houdini.NewBuilder(-1, 0, 0).Build(); houdini.ErrorCode(err) != houdini.CodeInvalidCount {
		t.Fatalf("got %v", err)
	}
}

func TestBuilder_Topology(t *testing.T) {
	b := houdini.NewBuilder(2, 1, 2)
	b.SetTopology(houdini.NewTopology([]int{0, 2}, nil))
	if houdini.ErrorCode(b.Err()) != houdini.CodeInvalidTopology {
		t.Fatalf("got %v", b.Err())
	}
}

func TestBuilder_CopiesInput(t *testing.T) {
	vals := []float64{1, 2}
	b := houdini.NewBuilder(2, 0, 0)
	houdini.Set(b, houdini.ClassPoint, "m", vals)
	g, _ := b.Build()
	vals[0] = 100

	a, _ := g.Get(houdini.ClassPoint, "m")
	got, _ := houdini.Values[float64](a)
	if got[0] != 1 {
		t.Fatalf("builder aliased caller slice: %v", got)
	}
	got[1] = 100
	again, _ := houdini.Values[float64](a)
	if again[1] != 2 {
		t.Fatalf("Values aliased attribute data: %v", again)
	}
	data := a.Data().([]float64)
	data[0] = 100
	if v, _ := houdini.At[float64](a, 0); v != 1 {
		t.Fatalf("Data aliased attribute data")
	}
}

func TestCopy(t *testing.T) {
	src := mustDecodeOne(t, `{"pointCount":2,"attributes":{"point":[
		{"name":"P","kind":"vec3","values":[[0,0,0],[1,1,1]]},
		{"name":"id","kind":"int","values":[1,2]}
	],"detail":[{"name":"label","kind":"string","value":"x"}]}}`)

	b := houdini.NewBuilder(2, 0, 0)
	houdini.Copy(b, src, houdini.ClassPoint)
	houdini.Copy(b, src, houdini.ClassDetail, "label")
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !slices.Equal(g.Names(houdini.ClassPoint), []string{"P", "id"}) {
		t.Fatalf("names = %v", g.Names(houdini.ClassPoint))
	}
	if !g.Equal(src) {
		t.Fatalf("copied geometry differs")
	}

	b = houdini.NewBuilder(2, 0, 0)
	houdini.Copy(b, src, houdini.ClassPoint, "missing")
	if houdini.ErrorCode(b.Err()) != houdini.CodeRequired {
		t.Fatalf("missing: %v", b.Err())
	}

	b = houdini.NewBuilder(3, 0, 0)
	houdini.Copy(b, src, houdini.ClassPoint, "P")
	if !errors.Is(b.Err(), houdini.ErrCardinalityMismatch) {
		t.Fatalf("point count change: %v", b.Err())
	}
}

func TestGeometry_AttributesOfRestartable(t *testing.T) {
	g := buildAllKinds(t)
	var first, second []string
	for a := range g.AttributesOf(houdini.ClassVertex) {
		first = append(first, a.Name())
	}
	for a := range g.AttributesOf(houdini.ClassVertex) {
		second = append(second, a.Name())
	}
	if !slices.Equal(first, []string{"uv", "index"}) || !slices.Equal(first, second) {
		t.Fatalf("iteration: %v then %v", first, second)
	}
}

func TestGeometry_Equal(t *testing.T) {
	build := func(order []string, v float64) *houdini.Geometry {
		b := houdini.NewBuilder(1, 0, 0)
		for _, n := range order {
			houdini.Set(b, houdini.ClassPoint, n, []float64{v})
		}
		g, _ := b.Build()
		return g
	}
	if !build([]string{"a", "b"}, 1).Equal(build([]string{"b", "a"}, 1)) {
		t.Fatalf("declaration order must not affect equality")
	}
	if build([]string{"a"}, 1).Equal(build([]string{"a"}, 2)) {
		t.Fatalf("different values compare equal")
	}
	if build([]string{"a"}, 1).Equal(build([]string{"a", "b"}, 1)) {
		t.Fatalf("different attribute sets compare equal")
	}
}
