package houdini

import (
	"fmt"
	"reflect"
	"strings"
)

// rowField maps one struct field to the attribute it carries.
type rowField struct {
	index    int
	name     string
	kind     AttributeKind
	elem     reflect.Type // field type without the pointer of optional fields
	optional bool
}

var rowKinds = map[reflect.Type]AttributeKind{
	reflect.TypeFor[int64]():   KindInt,
	reflect.TypeFor[bool]():    KindInt,
	reflect.TypeFor[float64](): KindFloat,
	reflect.TypeFor[string]():  KindString,
	reflect.TypeFor[Vec2]():    KindVec2,
	reflect.TypeFor[Vec3]():    KindVec3,
	reflect.TypeFor[Vec4]():    KindVec4,
	reflect.TypeFor[Mat2]():    KindMat2,
	reflect.TypeFor[Mat3]():    KindMat3,
	reflect.TypeFor[Mat4]():    KindMat4,
}

var boolType = reflect.TypeFor[bool]()

// attrName resolves the attribute carried by a struct field.
// Priority: houdini:"name" tag > field name; "-" disables the field.
func attrName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("houdini"); tag != "" {
		if i := strings.IndexByte(tag, ','); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" {
			return tag
		}
	}
	return sf.Name
}

func rowFields(t reflect.Type) ([]rowField, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("houdini: row type %s is not a struct", t)
	}
	var fields []rowField
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := attrName(sf)
		if name == "-" {
			continue
		}
		f := rowField{index: i, name: name, elem: sf.Type}
		if sf.Type.Kind() == reflect.Pointer {
			f.elem, f.optional = sf.Type.Elem(), true
		}
		kind, ok := rowKinds[f.elem]
		if !ok {
			return nil, &SchemaError{Code: CodeUnsupportedKind, Name: name, Kind: sf.Type.String(),
				Message: fmt.Sprintf("field %s.%s has no attribute kind", t.Name(), sf.Name)}
		}
		f.kind = kind
		fields = append(fields, f)
	}
	return fields, nil
}

// columnType is the element type of the attribute column behind f.
func (f rowField) columnType() reflect.Type {
	if f.elem == boolType {
		return reflect.TypeFor[int64]()
	}
	return f.elem
}

// fromColumn converts a column element to the field's value type.
func (f rowField) fromColumn(e reflect.Value) reflect.Value {
	if f.elem == boolType {
		return reflect.ValueOf(e.Int() != 0)
	}
	return e
}

// toColumn converts a field value to a column element.
func (f rowField) toColumn(v reflect.Value) reflect.Value {
	if f.elem == boolType {
		var n int64
		if v.Bool() {
			n = 1
		}
		return reflect.ValueOf(n)
	}
	return v
}

// Rows reads the attributes of class into one T per element. Every exported
// field of T names an attribute through its `houdini` tag (or the field
// name); `houdini:"-"` skips a field. Field types are the Scalar types or
// bool, which reads an int attribute as non-zero. Pointer fields are
// optional and stay nil when the attribute is absent. Attributes without a
// field are ignored.
func Rows[T any](g *Geometry, class AttributeClass) ([]T, error) {
	if g == nil {
		return nil, &SchemaError{Code: CodeGeometryMissing, Message: "nil geometry"}
	}
	fields, err := rowFields(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	rows := make([]T, g.ElementCount(class))
	for _, f := range fields {
		a, ok := g.Get(class, f.name)
		if !ok {
			if f.optional {
				continue
			}
			return nil, &SchemaError{Code: CodeRequired, Class: class, Name: f.name, Kind: f.kind.String(),
				Message: "no attribute for row field"}
		}
		if a.kind != f.kind || a.array {
			return nil, fmt.Errorf("%w: %s is %s, row field wants %s", ErrKindMismatch, a.name, a.kind, f.kind)
		}
		col := reflect.ValueOf(a.data)
		for i := range rows {
			v := f.fromColumn(col.Index(i))
			field := reflect.ValueOf(&rows[i]).Elem().Field(f.index)
			if f.optional {
				p := reflect.New(f.elem)
				p.Elem().Set(v)
				v = p
			}
			field.Set(v)
		}
	}
	return rows, nil
}

// SetRows writes one attribute of class per field of T, the columnar
// inverse of Rows. len(rows) must match the element count of class. An
// optional field that is nil in every row writes no attribute; nil entries
// next to set ones take the kind default.
func SetRows[T any](b *Builder, class AttributeClass, rows []T) {
	if !b.ready() {
		return
	}
	fields, err := rowFields(reflect.TypeFor[T]())
	if err != nil {
		b.fail(err)
		return
	}
	for _, f := range fields {
		col := reflect.MakeSlice(reflect.SliceOf(f.columnType()), len(rows), len(rows))
		set := 0
		for i := range rows {
			v := reflect.ValueOf(rows[i]).Field(f.index)
			if f.optional {
				if v.IsNil() {
					col.Index(i).Set(reflect.ValueOf(kindDefaults[f.kind]))
					continue
				}
				v = v.Elem()
			}
			set++
			col.Index(i).Set(f.toColumn(v))
		}
		if f.optional && set == 0 {
			continue
		}
		raw := RawDescriptor{Name: f.name, Class: class.String(), Kind: f.kind.String(), Len: len(rows)}
		b.put(raw, col.Interface(), PresenceSeen)
	}
}
