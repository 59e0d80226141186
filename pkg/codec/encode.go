package codec

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/urlstate/pkg/value"
)

// isoMilli is the ISO form written for times: UTC, millisecond precision.
const isoMilli = "2006-01-02T15:04:05.000Z07:00"

// EncodeText serializes a whole tree into one namespaced string. The
// top-level object marker is stripped for brevity and trailing terminators
// are dropped; the parser tolerates both. Serialization never fails.
func (c *Codec) EncodeText(v value.Value) string {
	var b strings.Builder
	if v.Kind() == value.KindObject {
		c.writeObjectBody(&b, v.Object())
	} else {
		c.writeValue(&b, v, false)
	}
	out := b.String()
	for c.terminator != "" && strings.HasSuffix(out, c.terminator) {
		out = out[:len(out)-len(c.terminator)]
	}
	return out
}

// writeValue serializes one value in namespaced position. inArray marks the
// bare contexts where scalars carry no leading marker.
//
// In typed mode primitives are introduced by the primitive marker and
// strings/times by the string marker. In plain mode scalars carry no type
// marker; outside arrays the string marker still separates an object key
// from its value.
func (c *Codec) writeValue(b *strings.Builder, v value.Value, inArray bool) {
	stops := c.valueStops
	if inArray {
		stops = c.elemStops
	}
	switch v.Kind() {
	case value.KindNull:
		b.WriteString(c.scalarPrefix(true, inArray))
		b.WriteString(c.escapeText(c.nullLiteral, stops))
	case value.KindUndefined:
		b.WriteString(c.scalarPrefix(true, inArray))
		b.WriteString(c.escapeText(c.undefinedLiteral, stops))
	case value.KindBool:
		b.WriteString(c.scalarPrefix(true, inArray))
		b.WriteString(c.formatBool(v.Bool()))
	case value.KindNumber:
		b.WriteString(c.scalarPrefix(true, inArray))
		b.WriteString(c.numberText(v.Number(), stops))
	case value.KindString:
		b.WriteString(c.scalarPrefix(false, inArray))
		b.WriteString(c.stringText(v.Str(), stops, inArray))
	case value.KindTime:
		b.WriteString(c.scalarPrefix(false, inArray))
		b.WriteString(c.datePrefix)
		b.WriteString(c.escapeText(c.formatTime(v.Time()), stops))
	case value.KindArray:
		c.writeArray(b, v.Array())
	case value.KindObject:
		b.WriteString(c.objectMarker)
		c.writeObjectBody(b, v.Object())
	}
}

// scalarPrefix returns the marker written before a scalar, if any.
func (c *Codec) scalarPrefix(primitive bool, inArray bool) string {
	if c.mode == ModePlain {
		if inArray {
			return ""
		}
		return c.stringMarker
	}
	if primitive {
		return c.primitiveMarker
	}
	if inArray {
		return ""
	}
	return c.stringMarker
}

func (c *Codec) writeArray(b *strings.Builder, elems []value.Value) {
	b.WriteString(c.arrayMarker)
	sep := c.namespacedArraySep()
	for i, e := range elems {
		if i > 0 {
			b.WriteString(sep)
		}
		c.writeValue(b, e, true)
	}
	b.WriteString(c.terminator)
}

func (c *Codec) writeObjectBody(b *strings.Builder, obj *value.Object) {
	for i := 0; i < obj.Len(); i++ {
		k, v := obj.At(i)
		if i > 0 {
			b.WriteString(c.entrySep)
		}
		b.WriteString(c.escapeText(k, c.keyStops))
		c.writeValue(b, v, false)
	}
	b.WriteString(c.terminator)
}

// stringText escapes raw string content for its position and prepends a
// defensive escape token when the text would otherwise be misread on the way
// back: as an encoded time (date prefix followed by a digit), as a marked
// value (leading marker in a bare context), or as a sentinel literal where
// sentinels are live.
func (c *Codec) stringText(raw string, stops []string, bare bool) string {
	out := c.escapeText(raw, stops)
	if c.needsGuard(raw, bare) {
		out = c.escape + out
	}
	return out
}

func (c *Codec) needsGuard(raw string, bare bool) bool {
	if raw == "" {
		return false
	}
	if c.datePrefix != "" && c.hasDatePrefix(raw) {
		return true
	}
	if bare {
		for _, m := range c.dispatch {
			if strings.HasPrefix(raw, m) {
				return true
			}
		}
	}
	// Sentinels only bite where the full resolution order runs: bare
	// positions always, marked positions in plain mode.
	if bare || c.mode == ModePlain {
		if raw == c.nullLiteral || raw == c.undefinedLiteral {
			return true
		}
		if c.emptyArraySet && raw == c.emptyArray {
			return true
		}
	}
	return false
}

// numberText formats a number and escapes its decimal point when "." doubles
// as a structural separator in this configuration, so the parser's cursor
// cannot mistake it for one.
func (c *Codec) numberText(f float64, stops []string) string {
	s := formatNumber(f)
	specials := stops
	if c.dotStructural() && !containsToken(stops, ".") {
		specials = append(append([]string{}, stops...), ".")
	}
	return c.escapeText(s, specials)
}

func (c *Codec) dotStructural() bool {
	return c.objectMarker == "." || c.nestSep == "."
}

func containsToken(set []string, tok string) bool {
	for _, t := range set {
		if t == tok {
			return true
		}
	}
	return false
}

func (c *Codec) formatBool(b bool) string {
	if c.boolStyle == BooleanDigit {
		if b {
			return "1"
		}
		return "0"
	}
	return strconv.FormatBool(b)
}

func (c *Codec) formatTime(t time.Time) string {
	if c.dateStyle == DateISO {
		return t.UTC().Format(isoMilli)
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// formatNumber renders the shortest decimal form, switching to exponent
// notation only for magnitudes where plain decimals stop being readable.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if f != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
