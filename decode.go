package houdini

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/luxalpa/houdini-node/internal/engine"
)

// Decode parses a transfer payload: either one geometry object or an array
// with one entry per input slot, where null marks an unconnected slot and
// decodes to a nil entry. Decoding stops at the first problem and returns
// a *DecodeError; no partial result is returned.
func Decode(payload []byte, opts ...DecodeOpt) ([]*Geometry, error) {
	opt := lastOpt(opts)
	tree, err := decodeTree(payload, opt)
	if err != nil {
		return nil, err
	}
	switch t := tree.(type) {
	case map[string]any:
		g, err := decodeGeometry(0, "", t, opt)
		if err != nil {
			return nil, err
		}
		return []*Geometry{g}, nil
	case []any:
		geos := make([]*Geometry, len(t))
		for i, v := range t {
			if v == nil {
				continue
			}
			base := "/" + strconv.Itoa(i)
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, &DecodeError{Issue{Input: i, Path: base, Code: CodeInvalidType,
					Message: "geometry must be an object or null, got " + describe(v)}}
			}
			if geos[i], err = decodeGeometry(i, base, obj, opt); err != nil {
				return nil, err
			}
		}
		return geos, nil
	}
	return nil, &DecodeError{Issue{Input: -1, Path: "/", Code: CodeInvalidType,
		Message: "payload must be a geometry object or an array of them, got " + describe(tree)}}
}

// DecodeOne decodes a payload that carries a single geometry, either as a
// bare object or as the first slot of an array.
func DecodeOne(payload []byte, opts ...DecodeOpt) (*Geometry, error) {
	geos, err := Decode(payload, opts...)
	if err != nil {
		return nil, err
	}
	if len(geos) == 0 || geos[0] == nil {
		return nil, &DecodeError{Issue{Input: 0, Code: CodeNoGeometry, Message: "payload carries no geometry"}}
	}
	return geos[0], nil
}

func (o DecodeOpt) maxElements() int {
	if o.MaxElements <= 0 {
		return DefaultMaxElements
	}
	return o.MaxElements
}

func (o DecodeOpt) schema(input int) *Schema {
	if input < len(o.Inputs) {
		return o.Inputs[input]
	}
	return nil
}

func decodeTree(payload []byte, opt DecodeOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(payload)) > opt.MaxBytes {
		return nil, &DecodeError{Issue{Input: -1, Code: CodeTooLarge,
			Message: fmt.Sprintf("payload is %d bytes, limit is %d", len(payload), opt.MaxBytes)}}
	}
	eo := engine.EnforceOptions{MaxDepth: opt.MaxDepth}
	switch {
	case opt.MaxDepth == 0:
		eo.MaxDepth = DefaultMaxDepth
	case opt.MaxDepth < 0:
		eo.MaxDepth = 0
	}
	switch opt.OnDuplicateKey {
	case Error:
		eo.OnDuplicate = engine.DupError
	case Warn:
		eo.OnDuplicate = engine.DupWarn
		eo.IssueSink = func(si engine.SimpleIssue) {
			if opt.OnWarning != nil {
				opt.OnWarning(Issue{Input: -1, Path: si.Path, Code: si.Code, Message: si.Message})
			}
		}
	}
	tree, err := engine.Parse(payload, eo)
	if err != nil {
		var ie engine.IssueError
		if errors.As(err, &ie) {
			return nil, &DecodeError{Issue{Input: -1, Path: ie.Path, Code: ie.Code, Message: ie.Message, Cause: err}}
		}
		return nil, &DecodeError{Issue{Input: -1, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return tree, nil
}

var (
	geometryKeys = []string{"pointCount", "primitiveCount", "vertexCount", "attributes", "topology"}
	topologyKeys = []string{"vertexPoints", "primitiveVertices"}
)

// geoDecoder carries the context of one input slot.
type geoDecoder struct {
	input       int
	base        string
	schema      *Schema
	maxElements int
}

func (d *geoDecoder) fail(path, code, format string, a ...any) error {
	return &DecodeError{Issue{Input: d.input, Path: d.base + path, Code: code, Message: fmt.Sprintf(format, a...)}}
}

func (d *geoDecoder) failAttr(path, code string, class AttributeClass, name, kind, format string, a ...any) error {
	return &DecodeError{Issue{Input: d.input, Path: d.base + path, Code: code, Class: class.String(), Name: name, Kind: kind,
		Message: fmt.Sprintf(format, a...)}}
}

func (d *geoDecoder) schemaFail(path string, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		return &DecodeError{schemaIssue(d.input, d.base+path, se)}
	}
	return d.fail(path, CodeParseError, "%v", err)
}

// checkKeys rejects keys outside allowed, reporting the first in sorted
// order so the error is stable.
func (d *geoDecoder) checkKeys(path string, obj map[string]any, allowed []string) error {
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if !slices.Contains(allowed, k) {
			return d.fail(engine.JoinPointer(path, k), CodeUnknownKey, "unknown key %q", k)
		}
	}
	return nil
}

func decodeGeometry(input int, base string, obj map[string]any, opt DecodeOpt) (*Geometry, error) {
	d := &geoDecoder{input: input, base: base, schema: opt.schema(input), maxElements: opt.maxElements()}
	if err := d.checkKeys("", obj, geometryKeys); err != nil {
		return nil, err
	}
	var counts Counts
	var err error
	if counts.Points, err = d.count(obj, "pointCount"); err != nil {
		return nil, err
	}
	if counts.Primitives, err = d.count(obj, "primitiveCount"); err != nil {
		return nil, err
	}
	if counts.Vertices, err = d.count(obj, "vertexCount"); err != nil {
		return nil, err
	}
	g := newGeometry(counts)
	if g.topo, err = d.topology(obj["topology"], counts); err != nil {
		return nil, err
	}
	if err := d.attributes(g, obj["attributes"]); err != nil {
		return nil, err
	}
	if err := d.applyDefaults(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (d *geoDecoder) count(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, d.fail("/"+key, CodeInvalidCount, "expected a non-negative integer, got %s", describe(v))
	}
	i, err := strconv.ParseInt(string(n), 10, 0)
	if err != nil || i < 0 {
		return 0, d.fail("/"+key, CodeInvalidCount, "expected a non-negative integer, got %s", n)
	}
	if i > int64(d.maxElements) {
		return 0, d.fail("/"+key, CodeInvalidCount, "%d elements exceed the limit of %d", i, d.maxElements)
	}
	return int(i), nil
}

func (d *geoDecoder) indexList(path string, v any) ([]int, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, d.fail(path, CodeInvalidTopology, "expected an array of indices, got %s", describe(v))
	}
	out := make([]int, len(items))
	for i, it := range items {
		n, ok := toInt(it)
		if !ok {
			return nil, d.fail(path+"/"+strconv.Itoa(i), CodeInvalidTopology, "expected an integer index, got %s", describe(it))
		}
		out[i] = int(n)
	}
	return out, nil
}

func (d *geoDecoder) topology(v any, counts Counts) (*Topology, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, d.fail("/topology", CodeInvalidTopology, "expected an object, got %s", describe(v))
	}
	if err := d.checkKeys("/topology", obj, topologyKeys); err != nil {
		return nil, err
	}
	t := &Topology{}
	if vp, ok := obj["vertexPoints"]; ok && vp != nil {
		list, err := d.indexList("/topology/vertexPoints", vp)
		if err != nil {
			return nil, err
		}
		t.vertexPoints = list
	}
	if pv, ok := obj["primitiveVertices"]; ok && pv != nil {
		prims, ok := pv.([]any)
		if !ok {
			return nil, d.fail("/topology/primitiveVertices", CodeInvalidTopology, "expected an array, got %s", describe(pv))
		}
		t.primitiveVertices = make([][]int, len(prims))
		for i, p := range prims {
			list, err := d.indexList("/topology/primitiveVertices/"+strconv.Itoa(i), p)
			if err != nil {
				return nil, err
			}
			t.primitiveVertices[i] = list
		}
	}
	if path, err := t.check(counts); err != nil {
		return nil, d.fail("/topology"+path, CodeInvalidTopology, "%v", err)
	}
	return t, nil
}

func (d *geoDecoder) attributes(g *Geometry, v any) error {
	if v == nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return d.fail("/attributes", CodeInvalidType, "expected an object keyed by class, got %s", describe(v))
	}
	tags := make([]string, len(Classes))
	for i, c := range Classes {
		tags[i] = c.String()
	}
	if err := d.checkKeys("/attributes", obj, tags); err != nil {
		return err
	}
	ns := namespace{}
	for _, class := range Classes {
		raw, ok := obj[class.String()]
		if !ok || raw == nil {
			continue
		}
		path := "/attributes/" + class.String()
		entries, ok := raw.([]any)
		if !ok {
			return d.fail(path, CodeInvalidType, "expected an array of attributes, got %s", describe(raw))
		}
		for i, e := range entries {
			a, err := d.attribute(path+"/"+strconv.Itoa(i), class, g.counts, e)
			if err != nil {
				return err
			}
			if err := ns.claim(a.Descriptor()); err != nil {
				return d.schemaFail(path+"/"+strconv.Itoa(i)+"/name", err)
			}
			g.add(a)
		}
	}
	return nil
}

func (d *geoDecoder) attribute(path string, class AttributeClass, counts Counts, v any) (*Attribute, error) {
	entry, ok := v.(map[string]any)
	if !ok {
		return nil, d.fail(path, CodeInvalidType, "expected an attribute object, got %s", describe(v))
	}
	valueKey := "values"
	if class == ClassDetail {
		valueKey = "value"
	}
	if err := d.checkKeys(path, entry, []string{"name", "kind", valueKey}); err != nil {
		return nil, err
	}
	name, err := d.stringField(path, entry, "name")
	if err != nil {
		return nil, err
	}
	kindTag, err := d.stringField(path, entry, "kind")
	if err != nil {
		return nil, err
	}
	value, ok := entry[valueKey]
	if !ok {
		return nil, d.failAttr(path, CodeRequired, class, name, kindTag, "missing %q", valueKey)
	}
	valuePath := path + "/" + valueKey

	kind, _ := ParseKind(kindTag)
	raw := RawDescriptor{Name: name, Class: class.String(), Kind: kindTag}
	var items []any
	if class == ClassDetail {
		items, raw.Array = detailItems(kind, value)
		if kind != KindInvalid && !raw.Array {
			if msg, bad := unsupportedShape(kind, value); bad {
				return nil, d.failAttr(valuePath, CodeUnsupportedKind, class, name, kindTag, "%s", msg)
			}
		}
	} else {
		list, ok := value.([]any)
		if !ok {
			if _, isMap := value.(map[string]any); isMap {
				return nil, d.failAttr(valuePath, CodeUnsupportedKind, class, name, kindTag, "dict values are not supported")
			}
			return nil, d.failAttr(valuePath, CodeInvalidType, class, name, kindTag, "expected an array of values, got %s", describe(value))
		}
		items = list
	}
	raw.Len = len(items)

	desc, err := ValidateDescriptor(raw, counts)
	if err != nil {
		return nil, d.schemaFail(path, err)
	}
	col, bad := buildColumn(desc.Kind, items)
	if bad >= 0 {
		it := items[bad]
		elemPath := valuePath
		if raw.Array || class != ClassDetail {
			elemPath += "/" + strconv.Itoa(bad)
		}
		if msg, unsupported := elementShape(desc, it); unsupported {
			return nil, d.failAttr(elemPath, CodeUnsupportedKind, class, name, kindTag, "%s", msg)
		}
		return nil, d.failAttr(elemPath, CodeInvalidType, class, name, kindTag, "value does not convert to %s, got %s", desc.Kind, describe(it))
	}
	if sp, declared := d.schema.Lookup(class, name); declared && (sp.Kind != desc.Kind || sp.Array != desc.Array) {
		return nil, d.failAttr(path, CodeInvalidType, class, name, kindTag,
			"declared as %s, got %s", shapeName(sp.Kind, sp.Array), shapeName(desc.Kind, desc.Array))
	}
	return &Attribute{name: desc.Name, class: class, kind: desc.Kind, array: desc.Array, data: col, presence: PresenceSeen}, nil
}

func (d *geoDecoder) stringField(path string, entry map[string]any, key string) (string, error) {
	v, ok := entry[key]
	if !ok {
		return "", d.fail(path, CodeRequired, "missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", d.fail(path+"/"+key, CodeInvalidType, "%s must be a string, got %s", key, describe(v))
	}
	return s, nil
}

// detailItems splits a detail value into its elements and reports whether
// it is an array value. The kind decides between a single vector written as
// a list of numbers and an array of vectors written as a list of lists.
func detailItems(kind AttributeKind, v any) ([]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return []any{v}, false
	}
	if kind.IsTuple() && len(list) > 0 {
		if _, nested := list[0].([]any); !nested {
			return []any{v}, false
		}
	}
	return list, true
}

// elementShape explains why a single element cannot be converted when the
// reason is an unsupported kind rather than a type mismatch.
func elementShape(d Descriptor, v any) (string, bool) {
	if d.Array && !d.Kind.IsTuple() {
		switch v.(type) {
		case []any:
			return "nested array values are not supported", true
		case map[string]any:
			return "dict values are not supported", true
		}
		return "", false
	}
	return unsupportedShape(d.Kind, v)
}

func shapeName(kind AttributeKind, array bool) string {
	if array {
		return kind.String() + "[]"
	}
	return kind.String()
}

// applyDefaults materializes absent optional attributes of the slot schema
// and rejects absent required ones.
func (d *geoDecoder) applyDefaults(g *Geometry) error {
	for _, class := range Classes {
		for sp := range d.schema.declaredOf(class) {
			if _, ok := g.Get(class, sp.Name); ok {
				continue
			}
			if !sp.Optional {
				return d.failAttr("/attributes/"+class.String(), CodeRequired, class, sp.Name, sp.Kind.String(),
					"required attribute is missing")
			}
			col := cloneColumn(sp.fill)
			if class != ClassDetail {
				col = repeatColumn(sp.fill, g.counts.Of(class))
			}
			g.add(&Attribute{name: sp.Name, class: class, kind: sp.Kind, array: sp.Array, data: col, presence: PresenceDefaultApplied})
		}
	}
	return nil
}
