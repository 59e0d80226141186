package codec

import (
	"unicode/utf8"

	"github.com/vango-dev/urlstate/pkg/value"
)

// DecodeText parses one namespaced string back into a value tree. Parsing is
// total: malformed input degrades to strings rather than erroring, so any
// hand-edited address bar still produces a usable state. The hint, when not
// undefined, guides scalar resolution; pass value.Undefined() for none.
func (c *Codec) DecodeText(text string, hint value.Value) value.Value {
	if text == "" {
		return value.ObjectValue(value.NewObject())
	}
	sc := newScanner(text, c.escape)

	// A leading marker means a standalone value rather than an object body,
	// unless entries follow it (then it is a body whose first key is empty).
	if sc.peekAny(c.dispatch) != "" {
		v := c.parseValue(sc, hint, c.valueStops)
		for sc.consume(c.terminator) {
		}
		if sc.eof() {
			return v
		}
		sc = newScanner(text, c.escape)
		return c.parseObjectBody(sc, hint)
	}

	// No leading marker: entries if any marker occurs unescaped, otherwise
	// the whole text is one bare scalar.
	if containsUnescaped(text, c.escape, c.dispatch) {
		return c.parseObjectBody(sc, hint)
	}
	raw, escaped := sc.readUntil(nil)
	return c.resolve(raw, hint, escaped)
}

// parseObjectBody consumes entries until the object's terminator or the end
// of input. The cursor is left after the terminator.
func (c *Codec) parseObjectBody(sc *scanner, hint value.Value) value.Value {
	obj := value.NewObject()
	for !sc.eof() {
		if sc.consume(c.terminator) {
			break
		}
		before := sc.pos
		key, _ := sc.readUntil(c.keyStops)
		marker := sc.peekAny(c.dispatch)
		var v value.Value
		if marker == "" {
			// A key with no value position: tolerate as the empty string.
			if key == "" && sc.eof() {
				break
			}
			v = value.String("")
		} else {
			v = c.parseValue(sc, childHint(hint, key), c.valueStops)
		}
		obj.Set(key, v)
		if sc.consume(c.entrySep) {
			continue
		}
		if sc.consume(c.terminator) {
			break
		}
		if sc.pos == before {
			// Never loop in place on degenerate input.
			_, size := utf8.DecodeRuneInString(sc.src[sc.pos:])
			sc.pos += size
		}
	}
	return value.ObjectValue(obj)
}

// parseValue dispatches on the marker at the cursor. Bare text (array
// elements, external input) runs the full resolution order; marked text runs
// only the resolution the marker leaves open.
func (c *Codec) parseValue(sc *scanner, hint value.Value, stops []string) value.Value {
	marker := sc.peekAny(c.dispatch)
	switch {
	case marker == "":
		raw, escaped := sc.readUntil(stops)
		return c.resolve(raw, hint, escaped)
	case marker == c.objectMarker:
		sc.consume(c.objectMarker)
		return c.parseObjectBody(sc, hint)
	case marker == c.arrayMarker:
		sc.consume(c.arrayMarker)
		return c.parseArray(sc, hint)
	case marker == c.primitiveMarker:
		sc.consume(c.primitiveMarker)
		raw, _ := sc.readUntil(stops)
		return c.resolvePrimitive(raw, hint)
	default:
		sc.consume(c.stringMarker)
		raw, escaped := sc.readUntil(stops)
		if c.mode == ModePlain {
			// Plain mode has no type markers: this is the generic value
			// delimiter, so the full order applies.
			return c.resolve(raw, hint, escaped)
		}
		return c.resolveString(raw, escaped, hint)
	}
}

// parseArray consumes elements until the array's terminator or end of input.
// A separator with nothing after it is a trailing empty-string element;
// immediate termination is the empty array.
func (c *Codec) parseArray(sc *scanner, hint value.Value) value.Value {
	if sc.consume(c.terminator) || sc.eof() {
		return value.Array()
	}
	sep := c.namespacedArraySep()
	var elems []value.Value
	for {
		elems = append(elems, c.parseValue(sc, elemHint(hint, len(elems)), c.elemStops))
		if sc.consume(sep) {
			if sc.eof() || sc.peekAny([]string{c.terminator}) != "" {
				elems = append(elems, value.String(""))
				sc.consume(c.terminator)
				break
			}
			continue
		}
		sc.consume(c.terminator)
		break
	}
	return value.Array(elems...)
}

// childHint narrows an object-shaped hint to one key.
func childHint(hint value.Value, key string) value.Value {
	if hint.Kind() != value.KindObject {
		return value.Undefined()
	}
	v, _ := hint.Object().Get(key)
	return v
}

// elemHint narrows an array-shaped hint to one index. Hints shorter than the
// data reuse their last element, so a one-element hint types a whole
// homogeneous array.
func elemHint(hint value.Value, i int) value.Value {
	if hint.Kind() != value.KindArray {
		return value.Undefined()
	}
	arr := hint.Array()
	if len(arr) == 0 {
		return value.Undefined()
	}
	if i >= len(arr) {
		i = len(arr) - 1
	}
	return arr[i]
}
