package houdini

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes carried by Issue.Code and reported to the host.
const (
	// Schema violations.
	CodeUnsupportedKind     = "unsupported_kind"
	CodeCardinalityMismatch = "cardinality_mismatch"
	CodeDuplicateName       = "duplicate_name"
	CodeInvalidName         = "invalid_name"
	CodeInvalidDefault      = "invalid_default"
	// Payload structure and content.
	CodeParseError      = "parse_error"
	CodeDuplicateKey    = "duplicate_key"
	CodeTooLarge        = "too_large"
	CodeUnknownKey      = "unknown_key"
	CodeRequired        = "required"
	CodeInvalidType     = "invalid_type"
	CodeInvalidCount    = "invalid_count"
	CodeInvalidTopology = "invalid_topology"
	CodeNoGeometry      = "no_geometry"
	CodeGeometryMissing = "geometry_missing"
	// Node logic.
	CodeNodeFailed = "node_failed"
)

// Issue describes one failure with enough context for host-side debugging:
// which input, where in the payload, and which attribute.
type Issue struct {
	Input   int    `json:"input"` // Input slot, -1 when not tied to one.
	Path    string `json:"path,omitempty"`
	Code    string `json:"code"`
	Class   string `json:"class,omitempty"`
	Name    string `json:"name,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (i Issue) String() string {
	b := &strings.Builder{}
	b.WriteString(i.Code)
	if i.Input >= 0 {
		fmt.Fprintf(b, " at input %d", i.Input)
	}
	if i.Path != "" {
		fmt.Fprintf(b, " %s", i.Path)
	}
	if i.Name != "" {
		fmt.Fprintf(b, " (%s attribute %q", i.Class, i.Name)
		if i.Kind != "" {
			fmt.Fprintf(b, ", kind %s", i.Kind)
		}
		b.WriteString(")")
	}
	if i.Message != "" {
		b.WriteString(": ")
		b.WriteString(i.Message)
	}
	return b.String()
}

// SchemaError reports an attribute descriptor that violates the exchange
// schema. It is always fatal for the enclosing decode or encode call.
type SchemaError struct {
	Code    string
	Class   AttributeClass
	Name    string
	Kind    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Name == "" {
		if e.Message == "" {
			return e.Code
		}
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s attribute %q (kind %s): %s", e.Code, e.Class, e.Name, e.Kind, e.Message)
}

// Is matches the code-only sentinels below.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	return ok && t.Name == "" && t.Code == e.Code
}

var (
	ErrUnsupportedAttributeKind = &SchemaError{Code: CodeUnsupportedKind}
	ErrCardinalityMismatch      = &SchemaError{Code: CodeCardinalityMismatch}
	ErrDuplicateAttributeName   = &SchemaError{Code: CodeDuplicateName}
	ErrInvalidAttributeName     = &SchemaError{Code: CodeInvalidName}
)

// ErrKindMismatch is returned by typed accessors when the requested Go type
// does not match the attribute kind.
var ErrKindMismatch = errors.New("houdini: attribute kind mismatch")

// DecodeError fails a whole decode call; no partial geometry is returned.
type DecodeError struct{ Issue }

func (e *DecodeError) Error() string { return "decode: " + e.Issue.String() }
func (e *DecodeError) Unwrap() error { return e.Cause }

// EncodeError fails a whole encode call.
type EncodeError struct{ Issue }

func (e *EncodeError) Error() string { return "encode: " + e.Issue.String() }
func (e *EncodeError) Unwrap() error { return e.Cause }

// NodeError wraps a failure returned by node logic. The core never inspects
// it beyond forwarding.
type NodeError struct{ Err error }

func (e *NodeError) Error() string { return "node: " + e.Err.Error() }
func (e *NodeError) Unwrap() error { return e.Err }

func schemaIssue(input int, path string, se *SchemaError) Issue {
	return Issue{
		Input:   input,
		Path:    path,
		Code:    se.Code,
		Class:   se.Class.String(),
		Name:    se.Name,
		Kind:    se.Kind,
		Message: se.Message,
		Cause:   se,
	}
}

// AsIssue extracts the structured issue carried by err, if any.
func AsIssue(err error) (Issue, bool) {
	if err == nil {
		return Issue{}, false
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Issue, true
	}
	var ee *EncodeError
	if errors.As(err, &ee) {
		return ee.Issue, true
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return schemaIssue(-1, "", se), true
	}
	var ne *NodeError
	if errors.As(err, &ne) {
		return Issue{Input: -1, Code: CodeNodeFailed, Message: ne.Err.Error(), Cause: ne.Err}, true
	}
	return Issue{}, false
}

// ErrorCode returns the issue code carried by err, or "".
func ErrorCode(err error) string {
	iss, ok := AsIssue(err)
	if !ok {
		return ""
	}
	return iss.Code
}
