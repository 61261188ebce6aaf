package houdini

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
)

// Element conversion from generic values (decoded JSON trees, schema
// defaults written in Go or loaded from declaration files).

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// fillTuple copies exactly len(dst) components from v into dst.
func fillTuple(dst []float64, v any) bool {
	var src []float64
	switch t := v.(type) {
	case []any:
		if len(t) != len(dst) {
			return false
		}
		for i, c := range t {
			f, ok := toFloat(c)
			if !ok {
				return false
			}
			dst[i] = f
		}
		return true
	case []float64:
		src = t
	case Vec2:
		src = t[:]
	case Vec3:
		src = t[:]
	case Vec4:
		src = t[:]
	case Mat2:
		src = t[:]
	case Mat3:
		src = t[:]
	case Mat4:
		src = t[:]
	default:
		return false
	}
	if len(src) != len(dst) {
		return false
	}
	copy(dst, src)
	return true
}

func toVec2(v any) (Vec2, bool) {
	var t Vec2
	ok := fillTuple(t[:], v)
	return t, ok
}

func toVec3(v any) (Vec3, bool) {
	var t Vec3
	ok := fillTuple(t[:], v)
	return t, ok
}

func toVec4(v any) (Vec4, bool) {
	var t Vec4
	ok := fillTuple(t[:], v)
	return t, ok
}

func toMat2(v any) (Mat2, bool) {
	var t Mat2
	ok := fillTuple(t[:], v)
	return t, ok
}

func toMat3(v any) (Mat3, bool) {
	var t Mat3
	ok := fillTuple(t[:], v)
	return t, ok
}

func toMat4(v any) (Mat4, bool) {
	var t Mat4
	ok := fillTuple(t[:], v)
	return t, ok
}

func collect[T any](items []any, conv func(any) (T, bool)) (any, int) {
	out := make([]T, len(items))
	for i, it := range items {
		v, ok := conv(it)
		if !ok {
			return nil, i
		}
		out[i] = v
	}
	return out, -1
}

// buildColumn converts items into the typed column for kind. On failure it
// returns the index of the first element that does not convert.
func buildColumn(kind AttributeKind, items []any) (any, int) {
	switch kind {
	case KindInt:
		return collect(items, toInt)
	case KindFloat:
		return collect(items, toFloat)
	case KindString:
		return collect(items, toString)
	case KindVec2:
		return collect(items, toVec2)
	case KindVec3:
		return collect(items, toVec3)
	case KindVec4:
		return collect(items, toVec4)
	case KindMat2:
		return collect(items, toMat2)
	case KindMat3:
		return collect(items, toMat3)
	case KindMat4:
		return collect(items, toMat4)
	}
	return nil, 0
}

// unsupportedShape reports element shapes that belong to kinds the exchange
// does not support: nested arrays and objects.
func unsupportedShape(kind AttributeKind, v any) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		return "dict values are not supported", true
	case []any:
		if !kind.IsTuple() {
			return "array values are only supported on detail attributes", true
		}
		for _, c := range t {
			switch c.(type) {
			case []any, map[string]any:
				return "nested array values are not supported", true
			}
		}
	}
	return "", false
}

// columnLen returns the number of elements of a typed column.
func columnLen(col any) int {
	if col == nil {
		return 0
	}
	return reflect.ValueOf(col).Len()
}

// cloneColumn returns an independent copy of a typed column.
func cloneColumn(col any) any {
	rv := reflect.ValueOf(col)
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}

// repeatColumn builds a column of n copies of the single element of one.
func repeatColumn(one any, n int) any {
	rv := reflect.ValueOf(one)
	out := reflect.MakeSlice(rv.Type(), n, n)
	if rv.Len() == 1 {
		e := rv.Index(0)
		for i := 0; i < n; i++ {
			out.Index(i).Set(e)
		}
	}
	return out.Interface()
}

func columnsEqual(a, b any) bool {
	if columnLen(a) == 0 && columnLen(b) == 0 {
		return reflect.TypeOf(a) == reflect.TypeOf(b)
	}
	return reflect.DeepEqual(a, b)
}

// checkFinite rejects NaN and infinities, which JSON cannot carry.
func checkFinite(col any) (int, bool) {
	var fs []float64
	switch c := col.(type) {
	case []float64:
		fs = c
	case []Vec2, []Vec3, []Vec4, []Mat2, []Mat3, []Mat4:
		rv := reflect.ValueOf(c)
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i)
			for j := 0; j < e.Len(); j++ {
				if f := e.Index(j).Float(); math.IsNaN(f) || math.IsInf(f, 0) {
					return i, false
				}
			}
		}
		return 0, true
	default:
		return 0, true
	}
	for i, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i, false
		}
	}
	return 0, true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case json.Number:
		return "number"
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
