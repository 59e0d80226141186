package codec

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/vango-dev/urlstate/pkg/value"
)

// Timestamps are only auto-detected as times inside a plausible calendar
// window, so small integers are not misread as epoch milliseconds. Strict
// coercion from a hint and explicitly date-prefixed text skip the window.
const (
	minPlausibleYear = 1990
	maxPlausibleYear = 3000
)

// resolve turns a bare lexeme into a Value. It is the single resolution
// order for every ambiguous literal in the system; the namespaced and
// standalone paths both call it and never reimplement any step.
//
//  1. Exact match against the null/undefined sentinels.
//  2. Empty text is the empty string.
//  3. A hint narrows the parse toward its own shape; failure falls through.
//  4. Heuristic detection: boolean, then date, then number.
//  5. The text itself.
//
// A lexeme that consumed an escape was deliberately written as text: steps 1
// and 4 are skipped so it is never promoted away from a string.
func (c *Codec) resolve(raw string, hint value.Value, escaped bool) value.Value {
	if !escaped {
		switch raw {
		case c.nullLiteral:
			return value.Null()
		case c.undefinedLiteral:
			return value.Undefined()
		}
	}
	if raw == "" {
		return value.String("")
	}
	if v, ok := c.coerceToHint(raw, hint); ok {
		return v
	}
	if !escaped {
		if v, ok := c.detect(raw); ok {
			return v
		}
	}
	return value.String(raw)
}

// coerceToHint attempts the strict parse matching the hint's shape. A hint
// carries no obligation of correctness: failure reports false and the caller
// falls through to heuristics.
func (c *Codec) coerceToHint(raw string, hint value.Value) (value.Value, bool) {
	switch hint.Kind() {
	case value.KindString:
		// Keep as string verbatim, even if it looks numeric.
		return value.String(raw), true
	case value.KindNumber:
		if f, ok := parseNumber(raw); ok {
			return value.Number(f), true
		}
	case value.KindBool:
		if b, ok := parseBool(raw, true); ok {
			return value.Bool(b), true
		}
	case value.KindTime:
		if t, ok := parseTime(raw, false); ok {
			return value.Time(t), true
		}
	}
	return value.Value{}, false
}

// detect runs the heuristic auto-detection chain in its fixed order:
// boolean, then date, then number. Each attempt is independently toggleable.
func (c *Codec) detect(raw string) (value.Value, bool) {
	if c.autoBooleans {
		if b, ok := parseBool(raw, c.boolStyle == BooleanDigit); ok {
			return value.Bool(b), true
		}
	}
	if c.autoDates {
		if c.datePrefix != "" && c.hasDatePrefix(raw) {
			// Explicitly marked: the plausibility window does not apply.
			if t, ok := parseTime(raw[len(c.datePrefix):], false); ok {
				return value.Time(t), true
			}
		}
		if t, ok := parseTime(raw, true); ok {
			return value.Time(t), true
		}
	}
	if c.autoNumbers {
		if f, ok := parseNumber(raw); ok {
			return value.Number(f), true
		}
	}
	return value.Value{}, false
}

// resolvePrimitive interprets the text after a primitive marker. The marker
// already narrows the shape to null/undefined/boolean/number, so escapes do
// not gate detection here; an unparseable literal degrades to its raw text
// rather than erroring.
func (c *Codec) resolvePrimitive(raw string, hint value.Value) value.Value {
	switch raw {
	case c.nullLiteral:
		return value.Null()
	case c.undefinedLiteral:
		return value.Undefined()
	case "":
		return value.String("")
	}
	// Hint-guided narrowing first, then the fixed boolean -> number order.
	switch hint.Kind() {
	case value.KindBool:
		if b, ok := parseBool(raw, true); ok {
			return value.Bool(b)
		}
	case value.KindNumber:
		if f, ok := parseNumber(raw); ok {
			return value.Number(f)
		}
	}
	if b, ok := parseBool(raw, c.boolStyle == BooleanDigit); ok {
		return value.Bool(b)
	}
	if f, ok := parseNumber(raw); ok {
		return value.Number(f)
	}
	return value.String(raw)
}

// resolveString interprets the text after a string marker. Times travel as
// string-typed tokens, so this is where the date prefix and a time hint
// apply; everything else stays a string because the marker already said so.
func (c *Codec) resolveString(raw string, escaped bool, hint value.Value) value.Value {
	if escaped {
		return value.String(raw)
	}
	if c.datePrefix != "" && c.hasDatePrefix(raw) {
		if t, ok := parseTime(raw[len(c.datePrefix):], false); ok {
			return value.Time(t)
		}
	}
	if hint.Kind() == value.KindTime {
		if t, ok := parseTime(raw, false); ok {
			return value.Time(t)
		}
	}
	return value.String(raw)
}

// hasDatePrefix reports whether raw is the date prefix followed by a digit
// (possibly a negative timestamp).
func (c *Codec) hasDatePrefix(raw string) bool {
	if !strings.HasPrefix(raw, c.datePrefix) {
		return false
	}
	rest := raw[len(c.datePrefix):]
	if rest == "" {
		return false
	}
	if rest[0] == '-' {
		rest = rest[1:]
	}
	return rest != "" && unicode.IsDigit(rune(rest[0]))
}

// parseTime parses an epoch-millisecond or ISO literal. When plausibleOnly
// is set, timestamps outside the calendar window are rejected; ISO text is
// unambiguous and never windowed.
func parseTime(raw string, plausibleOnly bool) (time.Time, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.UnixMilli(n).UTC()
		if plausibleOnly {
			year := t.Year()
			if year < minPlausibleYear || year > maxPlausibleYear {
				return time.Time{}, false
			}
		}
		return t, true
	}
	if t, ok := value.ParseISO(raw); ok {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// parseBool parses a strict boolean literal. Digits "1"/"0" are accepted
// only when allowDigits is set (a boolean hint, or digit boolean style).
func parseBool(raw string, allowDigits bool) (bool, bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if allowDigits {
		switch raw {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	}
	return false, false
}

// parseNumber parses a strict decimal literal. NaN and infinities are
// treated as parse failure, never propagated as values.
func parseNumber(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
