package codec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/urlstate/pkg/value"
)

// Field is one key/value pair of the standalone layout. Repeated keys are
// legal and represent array elements in order.
type Field struct {
	Key   string
	Value string
}

// maxFieldIndex bounds how large a numeric path segment may be and still
// address an array slot. Anything larger is an object key, which keeps a
// hostile "a.999999999=x" field from allocating a giant array.
const maxFieldIndex = 1024

// EncodeFields flattens a tree into standalone fields. Nested objects become
// dotted paths, scalar arrays become repeated keys (or one joined value when
// an array separator is configured), and arrays holding complex elements
// become indexed paths. Undefined object members, empty objects, and, absent
// an empty-array literal, empty repeated-key arrays produce no field.
func (c *Codec) EncodeFields(v value.Value) []Field {
	var out []Field
	if v.Kind() == value.KindObject {
		c.encodeFieldObject(&out, "", v.Object())
		return out
	}
	c.encodeFieldValue(&out, "", v)
	return out
}

func (c *Codec) encodeFieldObject(out *[]Field, prefix string, obj *value.Object) {
	for i := 0; i < obj.Len(); i++ {
		k, v := obj.At(i)
		if v.IsUndefined() {
			continue
		}
		key := c.escapeFieldKey(k)
		if prefix != "" {
			key = prefix + c.nestSep + key
		}
		c.encodeFieldValue(out, key, v)
	}
}

func (c *Codec) encodeFieldValue(out *[]Field, key string, v value.Value) {
	switch v.Kind() {
	case value.KindObject:
		c.encodeFieldObject(out, key, v.Object())
	case value.KindArray:
		c.encodeFieldArray(out, key, v.Array())
	default:
		*out = append(*out, Field{Key: key, Value: c.fieldScalarText(v, c.scalarFieldStops())})
	}
}

// scalarFieldStops returns the tokens structural in a plain scalar field.
// Only the markerless joined configuration has one: the array separator is
// then the sole evidence of an array, so scalars must escape it.
func (c *Codec) scalarFieldStops() []string {
	if c.arrayMarker == "" && !c.repeat {
		return []string{c.arraySep}
	}
	return nil
}

func (c *Codec) encodeFieldArray(out *[]Field, key string, elems []value.Value) {
	if len(elems) == 0 {
		switch {
		case c.emptyArraySet:
			*out = append(*out, Field{Key: key, Value: c.emptyArray})
		case !c.repeat:
			// With the marker disabled there is no terminator either; the
			// empty array is the empty value and a hint tells it apart from
			// the empty string on the way back.
			*out = append(*out, Field{Key: key, Value: c.arrayMarker + c.joinedTerminator()})
		}
		return
	}
	if hasComplexElement(elems) {
		for i, e := range elems {
			c.encodeFieldValue(out, key+c.indexSegment(i), e)
		}
		return
	}
	if c.repeat {
		for _, e := range elems {
			*out = append(*out, Field{Key: key, Value: c.fieldScalarText(e, nil)})
		}
		return
	}
	stops := []string{c.arraySep}
	if c.arrayMarker != "" {
		stops = append(stops, c.terminator)
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = c.fieldScalarText(e, stops)
	}
	*out = append(*out, Field{Key: key, Value: c.arrayMarker + strings.Join(parts, c.arraySep) + c.joinedTerminator()})
}

// joinedTerminator returns the closer of a joined standalone array. The
// terminator belongs to the marker; a markerless joined array is delimited by
// the field boundary alone.
func (c *Codec) joinedTerminator() string {
	if c.arrayMarker == "" {
		return ""
	}
	return c.terminator
}

func hasComplexElement(elems []value.Value) bool {
	for _, e := range elems {
		if k := e.Kind(); k == value.KindArray || k == value.KindObject {
			return true
		}
	}
	return false
}

func (c *Codec) indexSegment(i int) string {
	if c.indexStyle == IndexBracket {
		return "[" + strconv.Itoa(i) + "]"
	}
	return c.nestSep + strconv.Itoa(i)
}

// fieldScalarText renders one scalar as standalone field text. stops are the
// tokens that are structural in this position (only joined array elements
// have any).
func (c *Codec) fieldScalarText(v value.Value, stops []string) string {
	switch v.Kind() {
	case value.KindNull:
		return c.escapeText(c.nullLiteral, stops)
	case value.KindUndefined:
		return c.escapeText(c.undefinedLiteral, stops)
	case value.KindBool:
		return c.formatBool(v.Bool())
	case value.KindNumber:
		return c.escapeText(formatNumber(v.Number()), stops)
	case value.KindTime:
		return c.datePrefix + c.escapeText(c.formatTime(v.Time()), stops)
	default:
		return c.stringText(v.Str(), stops, true)
	}
}

// escapeFieldKey escapes one object key for use as a path segment: the
// nesting separator always, the opening bracket under bracket indexing, and
// under dot indexing an all-digit key takes a leading escape so the parser
// will not read it as an array index.
func (c *Codec) escapeFieldKey(seg string) string {
	specials := []string{c.nestSep}
	if c.indexStyle == IndexBracket {
		specials = append(specials, "[")
	}
	out := c.escapeText(seg, specials)
	if c.indexStyle == IndexDot && seg != "" && isAllDigits(seg) {
		out = c.escape + out
	}
	return out
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// DecodeFields assembles a tree from standalone fields, in the order given.
// Repeated keys collect into an array. Like DecodeText it is total: no input
// is an error.
func (c *Codec) DecodeFields(fields []Field, hint value.Value) value.Value {
	if len(fields) == 1 && fields[0].Key == "" {
		return c.resolveFieldValue(fields[0].Value, hint)
	}
	groups, order := groupFields(fields)
	root := &fieldNode{kind: nodeObj, child: map[string]*fieldNode{}}
	for _, key := range order {
		segs := c.splitPath(key)
		ph := pathHint(hint, segs)
		insertField(root, segs, c.resolveFieldGroup(groups[key], ph))
	}
	return materialize(root)
}

// DecodeFieldMap is DecodeFields over an unordered field map (for example
// url.Values). Keys are ordered by their position in the hint, then by a
// path-aware comparison where numeric segments sort numerically, so the
// result is deterministic regardless of map iteration order.
func (c *Codec) DecodeFieldMap(m map[string][]string, hint value.Value) value.Value {
	type entry struct {
		key  string
		segs []pathSeg
	}
	entries := make([]entry, 0, len(m))
	for k := range m {
		entries = append(entries, entry{key: k, segs: c.splitPath(k)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		hi, hj := hintKeyIndex(hint, entries[i].segs), hintKeyIndex(hint, entries[j].segs)
		if hi != hj {
			return hi < hj
		}
		return comparePaths(entries[i].segs, entries[j].segs) < 0
	})
	var fields []Field
	for _, e := range entries {
		for _, v := range m[e.key] {
			fields = append(fields, Field{Key: e.key, Value: v})
		}
	}
	return c.DecodeFields(fields, hint)
}

// resolveFieldGroup resolves all values seen under one key. More than one
// value is always an array; a single value becomes a one-element array when
// the hint says the slot holds one.
func (c *Codec) resolveFieldGroup(values []string, hint value.Value) value.Value {
	if len(values) == 1 {
		v := c.resolveFieldValue(values[0], hint)
		if hint.Kind() == value.KindArray && v.Kind() != value.KindArray {
			return value.Array(v)
		}
		return v
	}
	elems := make([]value.Value, len(values))
	for i, raw := range values {
		elems[i] = c.resolveFieldValue(raw, elemHint(hint, i))
	}
	return value.Array(elems...)
}

// resolveFieldValue interprets one field value. The empty-array literal and
// a leading array marker are the two non-scalar forms; everything else runs
// the bare resolution order.
func (c *Codec) resolveFieldValue(text string, hint value.Value) value.Value {
	if c.emptyArraySet && text == c.emptyArray {
		return value.Array()
	}
	if c.arrayMarker != "" && strings.HasPrefix(text, c.arrayMarker) {
		sc := newScanner(text, c.escape)
		sc.consume(c.arrayMarker)
		return c.parseArray(sc, hint)
	}
	if c.arrayMarker == "" && !c.repeat {
		// Markerless joined arrays: an unescaped separator or an array hint
		// is the only evidence, since there is no marker or terminator.
		if hint.Kind() == value.KindArray || containsUnescaped(text, c.escape, []string{c.arraySep}) {
			if text == "" {
				return value.Array()
			}
			parts, escaped := splitUnescaped(text, c.escape, c.arraySep)
			elems := make([]value.Value, len(parts))
			for i, p := range parts {
				elems[i] = c.resolve(p, elemHint(hint, i), escaped[i])
			}
			return value.Array(elems...)
		}
	}
	sc := newScanner(text, c.escape)
	raw, escaped := sc.readUntil(nil)
	// An array-shaped hint types the elements, not the text itself.
	if hint.Kind() == value.KindArray {
		hint = elemHint(hint, 0)
	}
	return c.resolve(raw, hint, escaped)
}

// pathSeg is one segment of a standalone key path.
type pathSeg struct {
	text    string
	index   int
	isIndex bool
}

// splitPath splits a standalone key into path segments, honoring escapes. A
// segment is an array index when it is all digits within the index bound and
// was not escaped (dot style), or appears in brackets (bracket style).
func (c *Codec) splitPath(key string) []pathSeg {
	var segs []pathSeg
	if c.indexStyle == IndexBracket {
		sc := newScanner(key, c.escape)
		stops := []string{c.nestSep, "["}
		for !sc.eof() {
			if sc.consume("[") {
				idx, _ := sc.readUntil([]string{"]"})
				sc.consume("]")
				sc.consume(c.nestSep)
				segs = append(segs, indexOrKey(idx))
				continue
			}
			text, _ := sc.readUntil(stops)
			dotted := sc.consume(c.nestSep)
			if text == "" && !dotted && len(segs) > 0 {
				continue
			}
			segs = append(segs, pathSeg{text: text})
		}
		if len(segs) == 0 {
			segs = append(segs, pathSeg{text: ""})
		}
		return segs
	}
	parts, escaped := splitUnescaped(key, c.escape, c.nestSep)
	for i, p := range parts {
		if !escaped[i] {
			if seg := indexOrKey(p); seg.isIndex {
				segs = append(segs, seg)
				continue
			}
		}
		segs = append(segs, pathSeg{text: p})
	}
	return segs
}

func indexOrKey(s string) pathSeg {
	if isAllDigits(s) {
		if n, err := strconv.Atoi(s); err == nil && n <= maxFieldIndex {
			return pathSeg{index: n, isIndex: true}
		}
	}
	return pathSeg{text: s}
}

// pathHint walks the hint tree along a path.
func pathHint(hint value.Value, segs []pathSeg) value.Value {
	cur := hint
	for _, s := range segs {
		if s.isIndex {
			cur = elemHint(cur, s.index)
		} else {
			cur = childHint(cur, s.text)
		}
	}
	return cur
}

// hintKeyIndex ranks a path by the position of its first segment among the
// hint's top-level keys; paths the hint does not know sort after those it
// does.
func hintKeyIndex(hint value.Value, segs []pathSeg) int {
	if hint.Kind() != value.KindObject || len(segs) == 0 || segs[0].isIndex {
		return int(^uint(0) >> 1)
	}
	for i, k := range hint.Object().Keys() {
		if k == segs[0].text {
			return i
		}
	}
	return int(^uint(0) >> 1)
}

func comparePaths(a, b []pathSeg) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		sa, sb := a[i], b[i]
		switch {
		case sa.isIndex && sb.isIndex:
			if sa.index != sb.index {
				if sa.index < sb.index {
					return -1
				}
				return 1
			}
		case sa.isIndex != sb.isIndex:
			// Indexes group before keys at the same depth.
			if sa.isIndex {
				return -1
			}
			return 1
		default:
			if sa.text != sb.text {
				if sa.text < sb.text {
					return -1
				}
				return 1
			}
		}
	}
	return len(a) - len(b)
}

func groupFields(fields []Field) (map[string][]string, []string) {
	groups := make(map[string][]string, len(fields))
	var order []string
	for _, f := range fields {
		if _, seen := groups[f.Key]; !seen {
			order = append(order, f.Key)
		}
		groups[f.Key] = append(groups[f.Key], f.Value)
	}
	return groups, order
}

// fieldNode is the mutable intermediate tree fields assemble into before it
// is frozen into Values.
type fieldNode struct {
	kind  nodeKind
	v     value.Value
	keys  []string
	child map[string]*fieldNode
	elems []*fieldNode
}

type nodeKind int

const (
	nodeLeaf nodeKind = iota
	nodeObj
	nodeArr
)

func insertField(root *fieldNode, segs []pathSeg, v value.Value) {
	cur := root
	for i, seg := range segs {
		if i == len(segs)-1 {
			setChild(cur, seg, &fieldNode{kind: nodeLeaf, v: v})
			return
		}
		want := nodeObj
		if segs[i+1].isIndex {
			want = nodeArr
		}
		next := getChild(cur, seg)
		if next == nil || next.kind != want {
			next = &fieldNode{kind: want}
			if want == nodeObj {
				next.child = map[string]*fieldNode{}
			}
			setChild(cur, seg, next)
		}
		cur = next
	}
}

func segKey(seg pathSeg) string {
	if seg.isIndex {
		return strconv.Itoa(seg.index)
	}
	return seg.text
}

func getChild(n *fieldNode, seg pathSeg) *fieldNode {
	if n.kind == nodeArr && seg.isIndex {
		if seg.index < len(n.elems) {
			return n.elems[seg.index]
		}
		return nil
	}
	return n.child[segKey(seg)]
}

func setChild(n *fieldNode, seg pathSeg, child *fieldNode) {
	if n.kind == nodeArr && seg.isIndex {
		for len(n.elems) <= seg.index {
			n.elems = append(n.elems, nil)
		}
		n.elems[seg.index] = child
		return
	}
	key := segKey(seg)
	if _, ok := n.child[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.child[key] = child
}

func materialize(n *fieldNode) value.Value {
	switch n.kind {
	case nodeObj:
		obj := value.NewObject()
		for _, k := range n.keys {
			obj.Set(k, materialize(n.child[k]))
		}
		return value.ObjectValue(obj)
	case nodeArr:
		elems := make([]value.Value, len(n.elems))
		for i, e := range n.elems {
			if e == nil {
				elems[i] = value.Undefined()
				continue
			}
			elems[i] = materialize(e)
		}
		return value.Array(elems...)
	default:
		return n.v
	}
}
