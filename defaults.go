package houdini

import (
	"fmt"
	"reflect"
)

// Per-kind default elements used for optional attributes that are absent
// from a payload. Four-component vectors default to the identity quaternion
// and matrices to identity.
var kindDefaults = map[AttributeKind]any{
	KindInt:    int64(0),
	KindFloat:  float64(0),
	KindString: "",
	KindVec2:   Vec2{},
	KindVec3:   Vec3{},
	KindVec4:   Vec4{0, 0, 0, 1},
	KindMat2:   Mat2{1, 0, 0, 1},
	KindMat3:   Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1},
	KindMat4:   Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
}

// DefaultValue returns the default element for kind.
func DefaultValue(kind AttributeKind) any { return kindDefaults[kind] }

// defaultFill resolves the column substituted for an absent optional
// attribute: a one-element column, or the whole array for detail arrays.
func defaultFill(sp AttributeSpec) (any, error) {
	if sp.Array {
		if sp.Default == nil {
			col, _ := buildColumn(sp.Kind, []any{})
			return col, nil
		}
		items, ok := toItems(sp.Default)
		if !ok {
			return nil, fmt.Errorf("default for array attribute must be a slice, got %T", sp.Default)
		}
		col, bad := buildColumn(sp.Kind, items)
		if bad >= 0 {
			return nil, fmt.Errorf("default element %d does not convert to %s", bad, sp.Kind)
		}
		return col, nil
	}
	def := sp.Default
	if def == nil {
		def = kindDefaults[sp.Kind]
	}
	col, bad := buildColumn(sp.Kind, []any{def})
	if bad >= 0 {
		return nil, fmt.Errorf("default %v does not convert to %s", sp.Default, sp.Kind)
	}
	return col, nil
}

// toItems spreads any slice into []any.
func toItems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
