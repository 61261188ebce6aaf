package houdini

import (
	"context"
	"errors"
)

// Node is the logic of one external geometry node. Apply receives the
// decoded input slots and returns a new geometry built with a Builder.
// Inputs must not be retained after Apply returns.
type Node interface {
	Apply(ctx context.Context, in Inputs) (*Geometry, error)
}

// NodeFunc adapts a function to Node.
type NodeFunc func(ctx context.Context, in Inputs) (*Geometry, error)

func (f NodeFunc) Apply(ctx context.Context, in Inputs) (*Geometry, error) { return f(ctx, in) }

// RunOpt bundles the codec options of one invocation.
type RunOpt struct {
	Decode DecodeOpt
	Encode EncodeOpt
}

// Run performs one invocation: decode payload, apply node, encode the
// result as a single geometry object. On any failure nothing is encoded.
func Run(ctx context.Context, node Node, payload []byte, opts ...RunOpt) ([]byte, error) {
	opt := lastOpt(opts)
	geos, err := Decode(payload, opt.Decode)
	if err != nil {
		return nil, err
	}
	out, err := node.Apply(ctx, Inputs(geos))
	if err != nil {
		var ne *NodeError
		if errors.As(err, &ne) {
			return nil, err
		}
		return nil, &NodeError{Err: err}
	}
	if out == nil {
		return nil, &NodeError{Err: errors.New("node returned no geometry")}
	}
	return EncodeOne(out, opt.Encode)
}
