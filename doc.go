// Package houdini exchanges geometry attributes between Houdini and node
// logic running in an external process.
//
// The host serialises its input geometries to JSON; Decode turns the payload
// into read-only Geometry values, a Node computes a new Geometry through a
// Builder, and Encode writes it back for the host to apply.
//
// Exchange rules:
//   - Classes are detail, point, primitive and vertex. Non-detail attributes
//     carry exactly one value per element of their class.
//   - Kinds are int, float, string, vec2, vec3, vec4, mat2, mat3 and mat4.
//     Dict and intrinsic attributes are rejected, as are array values outside
//     detail.
//   - Optional attributes declared in a Schema are filled with their default
//     when absent and marked PresenceDefaultApplied.
//   - Every failure carries an Issue (input slot, JSON pointer, code).
//
// Rows and SetRows map the columns of one class to and from a slice of
// structs tagged with `houdini:"name"`.
//
// Typical usage:
//
//	in := houdini.MustSchema(houdini.AttributeSpec{Class: houdini.ClassPoint, Name: "mass", Kind: houdini.KindFloat})
//	out, err := houdini.Run(ctx, node, payload, houdini.RunOpt{
//		Decode: houdini.DecodeOpt{Inputs: []*houdini.Schema{in}},
//	})
package houdini
