package houdini_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	houdini "github.com/luxalpa/houdini-node"
)

var massSchema = houdini.MustSchema(
	houdini.AttributeSpec{Class: houdini.ClassPoint, Name: "mass", Kind: houdini.KindFloat},
	houdini.AttributeSpec{Class: houdini.ClassDetail, Name: "label", Kind: houdini.KindString, Optional: true},
)

// doubleMass writes mass*2 and passes every other point attribute through.
func doubleMass(seen *[]float64) houdini.NodeFunc {
	return func(ctx context.Context, in houdini.Inputs) (*houdini.Geometry, error) {
		g, err := in.Geometry(0)
		if err != nil {
			return nil, err
		}
		mass, _ := g.Get(houdini.ClassPoint, "mass")
		vals, err := houdini.Values[float64](mass)
		if err != nil {
			return nil, err
		}
		for i := range vals {
			vals[i] *= 2
		}
		b := houdini.NewBuilder(g.ElementCount(houdini.ClassPoint), 0, 0)
		houdini.Set(b, houdini.ClassPoint, "mass", vals)
		var rest []string
		for _, n := range g.Names(houdini.ClassPoint) {
			if n != "mass" {
				rest = append(rest, n)
			}
		}
		if len(rest) > 0 {
			houdini.Copy(b, g, houdini.ClassPoint, rest...)
		}
		out, err := b.Build()
		if seen != nil {
			*seen, _ = houdini.Values[float64](mass)
		}
		return out, err
	}
}

func TestRun_DoubleMass(t *testing.T) {
	var inputAfter []float64
	payload := []byte(`[{"pointCount":3,"attributes":{"point":[
		{"name":"mass","kind":"float","values":[1,2,3]},
		{"name":"id","kind":"int","values":[10,11,12]}
	]}}]`)
	out, err := houdini.Run(context.Background(), doubleMass(&inputAfter), payload, houdini.RunOpt{
		Decode: houdini.DecodeOpt{Inputs: []*houdini.Schema{massSchema}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !slices.Equal(inputAfter, []float64{1, 2, 3}) {
		t.Fatalf("input geometry was modified: %v", inputAfter)
	}
	g, err := houdini.DecodeOne(out)
	if err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	mass, _ := g.Get(houdini.ClassPoint, "mass")
	if got, _ := houdini.Values[float64](mass); !slices.Equal(got, []float64{2, 4, 6}) {
		t.Fatalf("mass = %v", got)
	}
	id, ok := g.Get(houdini.ClassPoint, "id")
	if !ok {
		t.Fatalf("id was not passed through")
	}
	if got, _ := houdini.Values[int64](id); !slices.Equal(got, []int64{10, 11, 12}) {
		t.Fatalf("id = %v", got)
	}
	if _, ok := g.Get(houdini.ClassDetail, "label"); ok {
		t.Fatalf("label was not written by the node")
	}
}

func TestRun_LabelDefault(t *testing.T) {
	node := houdini.NodeFunc(func(ctx context.Context, in houdini.Inputs) (*houdini.Geometry, error) {
		g, err := in.Geometry(0)
		if err != nil {
			return nil, err
		}
		label, ok := g.Get(houdini.ClassDetail, "label")
		if !ok {
			return nil, errors.New("label missing")
		}
		v, err := houdini.Value[string](label)
		if err != nil {
			return nil, err
		}
		b := houdini.NewBuilder(0, 0, 0)
		houdini.SetDetail(b, "echo", "["+v+"]")
		return b.Build()
	})
	payload := []byte(`{"pointCount":1,"attributes":{"point":[{"name":"mass","kind":"float","values":[1]}]}}`)
	out, err := houdini.Run(context.Background(), node, payload, houdini.RunOpt{
		Decode: houdini.DecodeOpt{Inputs: []*houdini.Schema{massSchema}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	g, _ := houdini.DecodeOne(out)
	echo, _ := g.Get(houdini.ClassDetail, "echo")
	if v, _ := houdini.Value[string](echo); v != "[]" {
		t.Fatalf("echo = %q", v)
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	// Decode failures are returned as they are and the node never runs.
	called := false
	spy := houdini.NodeFunc(func(context.Context, houdini.Inputs) (*houdini.Geometry, error) {
		called = true
		return nil, nil
	})
	_, err := houdini.Run(ctx, spy, []byte(`{"attributes":{"detail":[{"name":"d","kind":"dict","value":{}}]}}`))
	var de *houdini.DecodeError
	if !errors.As(err, &de) || called {
		t.Fatalf("decode failure: %v (called=%v)", err, called)
	}

	boom := errors.New("boom")
	failing := houdini.NodeFunc(func(context.Context, houdini.Inputs) (*houdini.Geometry, error) { return nil, boom })
	out, err := houdini.Run(ctx, failing, []byte(`{}`))
	var ne *houdini.NodeError
	if out != nil || !errors.As(err, &ne) || !errors.Is(err, boom) {
		t.Fatalf("node failure: %v", err)
	}
	if houdini.ErrorCode(err) != houdini.CodeNodeFailed {
		t.Fatalf("code = %q", houdini.ErrorCode(err))
	}

	_, err = houdini.Run(ctx, doubleMass(nil), []byte(`[null]`))
	if houdini.ErrorCode(err) != houdini.CodeGeometryMissing || !errors.As(err, &ne) {
		t.Fatalf("missing input: %v", err)
	}

	_, err = houdini.Run(ctx, spy, []byte(`{}`))
	if !errors.As(err, &ne) {
		t.Fatalf("nil output: %v", err)
	}
}
