package houdini

import "strings"

// AttributeClass is the geometry element an attribute is attached to.
type AttributeClass int

const (
	ClassDetail    AttributeClass = iota // Whole geometry, cardinality 1.
	ClassPoint                           // One value per point.
	ClassPrimitive                       // One value per primitive.
	ClassVertex                          // One value per vertex.
)

// Classes lists every attribute class in wire order.
var Classes = [...]AttributeClass{ClassDetail, ClassPoint, ClassPrimitive, ClassVertex}

func (c AttributeClass) String() string {
	switch c {
	case ClassDetail:
		return "detail"
	case ClassPoint:
		return "point"
	case ClassPrimitive:
		return "primitive"
	case ClassVertex:
		return "vertex"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the four classes.
func (c AttributeClass) Valid() bool { return c >= ClassDetail && c <= ClassVertex }

// ParseClass maps a wire tag to its class.
func ParseClass(tag string) (AttributeClass, bool) {
	for _, c := range Classes {
		if c.String() == tag {
			return c, true
		}
	}
	return 0, false
}

// AttributeKind is the data kind of every element of an attribute.
type AttributeKind int

const (
	KindInvalid AttributeKind = iota
	KindInt
	KindFloat
	KindString
	KindVec2
	KindVec3
	KindVec4
	KindMat2
	KindMat3
	KindMat4
)

var kindTags = map[AttributeKind]string{
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindVec2:   "vec2",
	KindVec3:   "vec3",
	KindVec4:   "vec4",
	KindMat2:   "mat2",
	KindMat3:   "mat3",
	KindMat4:   "mat4",
}

func (k AttributeKind) String() string {
	if s, ok := kindTags[k]; ok {
		return s
	}
	return "invalid"
}

// ParseKind maps a wire tag to a supported kind. Unsupported tags such as
// "dict" or "intrinsic" return KindInvalid and false.
func ParseKind(tag string) (AttributeKind, bool) {
	for k, s := range kindTags {
		if s == tag {
			return k, true
		}
	}
	return KindInvalid, false
}

// TupleSize is the number of components of one element: 1 for scalars.
func (k AttributeKind) TupleSize() int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4, KindMat2:
		return 4
	case KindMat3:
		return 9
	case KindMat4:
		return 16
	case KindInt, KindFloat, KindString:
		return 1
	default:
		return 0
	}
}

// IsTuple reports whether k is a fixed-size float tuple.
func (k AttributeKind) IsTuple() bool { return k >= KindVec2 && k <= KindMat4 }

// Fixed-size float tuples. Matrices are stored column-major.
type (
	Vec2 [2]float64
	Vec3 [3]float64
	Vec4 [4]float64
	Mat2 [4]float64
	Mat3 [9]float64
	Mat4 [16]float64
)

// Scalar is the set of Go element types an attribute column can hold.
type Scalar interface {
	int64 | float64 | string | Vec2 | Vec3 | Vec4 | Mat2 | Mat3 | Mat4
}

// KindOf returns the attribute kind stored as T.
func KindOf[T Scalar]() AttributeKind {
	var zero T
	switch any(zero).(type) {
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	case Vec2:
		return KindVec2
	case Vec3:
		return KindVec3
	case Vec4:
		return KindVec4
	case Mat2:
		return KindMat2
	case Mat3:
		return KindMat3
	case Mat4:
		return KindMat4
	}
	return KindInvalid
}

// intrinsicPrefix marks host-computed attributes that cannot be exchanged.
const intrinsicPrefix = "intrinsic:"

func isIntrinsicName(name string) bool { return strings.HasPrefix(name, intrinsicPrefix) }

// DefaultMaxInputs is the number of geometry inputs a generated host asset
// exposes unless its declaration asks for more. The core does not enforce it.
const DefaultMaxInputs = 5

// Decoding limits applied when DecodeOpt leaves them zero.
const (
	DefaultMaxDepth    = 64
	DefaultMaxElements = 1 << 24
)

// Severity expresses how a strictness violation is treated.
type Severity int

const (
	Error Severity = iota
	Warn
	Ignore
)

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	// Inputs holds the declared schema per input slot; nil entries and
	// missing slots accept whatever the payload carries.
	Inputs []*Schema
	// OnDuplicateKey treats repeated JSON object keys (zero value: Error).
	OnDuplicateKey Severity
	// OnWarning receives non-fatal issues when OnDuplicateKey is Warn.
	OnWarning func(Issue)
	// MaxDepth limits JSON nesting. Zero means DefaultMaxDepth; a negative
	// value disables the limit.
	MaxDepth int
	// MaxElements caps each of the three element counts. Zero or negative
	// means DefaultMaxElements.
	MaxElements int
	// MaxBytes limits the payload size (0 = unlimited).
	MaxBytes int64
}

// EncodeMode selects canonical or preserving output.
type EncodeMode int

const (
	// EncodeCanonical writes every attribute.
	EncodeCanonical EncodeMode = iota
	// EncodePreserve omits attributes that only exist because a schema
	// default was applied while decoding.
	EncodePreserve
)

// EncodeOpt bundles encoding options.
type EncodeOpt struct {
	Mode   EncodeMode
	Indent bool
}

func lastOpt[T any](opts []T) T {
	var opt T
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
