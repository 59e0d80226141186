package codec

import (
	"strings"

	"github.com/vango-dev/urlstate/internal/errors"
)

// Mode selects the encoding family.
type Mode int

const (
	// ModeTyped emits a marker before every scalar so encoded text is
	// self-describing and parseable without a hint.
	ModeTyped Mode = iota

	// ModePlain omits type markers; scalar types are recovered from a
	// caller-supplied hint or heuristic auto-detection.
	ModePlain
)

// BooleanStyle selects how booleans are written.
type BooleanStyle int

const (
	// BooleanText writes booleans as "true"/"false".
	BooleanText BooleanStyle = iota

	// BooleanDigit writes booleans as "1"/"0".
	BooleanDigit
)

// DateStyle selects how times are written.
type DateStyle int

const (
	// DateTimestamp writes times as Unix millisecond integers.
	DateTimestamp DateStyle = iota

	// DateISO writes times in ISO 8601 form.
	DateISO
)

// IndexStyle selects how array elements are addressed in standalone field
// paths.
type IndexStyle int

const (
	// IndexDot writes indexed paths as "items.0.name".
	IndexDot IndexStyle = iota

	// IndexBracket writes indexed paths as "items[0].name".
	IndexBracket
)

// Codec is an immutable configuration plus the serialize/parse machinery
// built on it. A Codec may be shared and invoked concurrently: no call
// mutates it.
type Codec struct {
	mode       Mode
	fieldsOnly bool

	// Markers. An empty string means the marker is disabled.
	stringMarker    string
	primitiveMarker string
	arrayMarker     string
	objectMarker    string
	terminator      string

	// Separators.
	entrySep string
	nestSep  string
	arraySep string // literal joiner; unused when repeatKeys
	repeat   bool   // standalone arrays as repeated keys

	escape     string
	datePrefix string // empty = disabled

	nullLiteral      string
	undefinedLiteral string

	boolStyle  BooleanStyle
	dateStyle  DateStyle
	indexStyle IndexStyle

	autoNumbers  bool
	autoBooleans bool
	autoDates    bool

	// emptyArray is the standalone stand-in for an empty array; when unset
	// the field is omitted entirely.
	emptyArray    string
	emptyArraySet bool

	// Stop sets, computed once at construction (never per call).
	keyStops   []string // namespaced key position
	valueStops []string // namespaced scalar value position
	elemStops  []string // bare array element position
	dispatch   []string // enabled markers checked at value start
}

// New resolves the supplied options against the defaults and validates the
// result. All token-collision detection happens here; serialize/parse never
// re-check it. The returned error, if any, is a configuration error.
func New(opts ...Option) (*Codec, error) {
	b := builder{c: &Codec{
		mode:             ModeTyped,
		stringMarker:     "=",
		primitiveMarker:  ":",
		arrayMarker:      "@",
		objectMarker:     ".",
		terminator:       ";",
		entrySep:         ",",
		nestSep:          ".",
		repeat:           true,
		datePrefix:       "D",
		nullLiteral:      "null",
		undefinedLiteral: "undefined",
		boolStyle:        BooleanText,
		dateStyle:        DateTimestamp,
		indexStyle:       IndexDot,
		autoNumbers:      true,
		autoBooleans:     true,
		autoDates:        true,
	}}
	for _, opt := range opts {
		opt(&b)
	}
	c := b.c
	if !b.escapeSet {
		if c.mode == ModePlain {
			c.escape = "_"
		} else {
			c.escape = "/"
		}
	}
	if err := c.validate(&b); err != nil {
		return nil, err
	}
	c.computeStops()
	return c, nil
}

// Mode reports the codec's encoding family.
func (c *Codec) Mode() Mode { return c.mode }

// FieldsOnly reports whether the namespaced layout is disabled.
func (c *Codec) FieldsOnly() bool { return c.fieldsOnly }

// token pairs a configured string with its role name for error messages.
type token struct {
	role string
	text string
}

func (c *Codec) enabledTokens() []token {
	all := []token{
		{"string marker", c.stringMarker},
		{"primitive marker", c.primitiveMarker},
		{"array marker", c.arrayMarker},
		{"object marker", c.objectMarker},
		{"terminator", c.terminator},
		{"entry separator", c.entrySep},
	}
	if !c.repeat {
		all = append(all, token{"array separator", c.arraySep})
	}
	enabled := all[:0]
	for _, t := range all {
		if t.text != "" {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

func (c *Codec) validate(b *builder) error {
	// Disabled markers are legal only for a fields-only codec; namespaced
	// text cannot be parsed unambiguously without them.
	if !c.fieldsOnly {
		if b.primitiveOff {
			return errors.New("C006", "primitive marker")
		}
		if b.arrayOff {
			return errors.New("C006", "array marker")
		}
	}

	for _, t := range []token{
		{"object marker", c.objectMarker},
		{"string marker", c.stringMarker},
		{"terminator", c.terminator},
		{"entry separator", c.entrySep},
		{"nesting separator", c.nestSep},
		{"escape token", c.escape},
		{"null literal", c.nullLiteral},
		{"undefined literal", c.undefinedLiteral},
	} {
		if t.text == "" {
			return errors.New("C001", t.role)
		}
	}
	if !c.repeat && c.arraySep == "" {
		return errors.New("C001", "array separator")
	}

	tokens := c.enabledTokens()
	for i, a := range tokens {
		for _, bb := range tokens[i+1:] {
			if a.text == bb.text {
				return errors.New("C002", a.role, a.text, bb.role)
			}
			if strings.HasPrefix(bb.text, a.text) {
				return errors.New("C003", a.role, a.text, bb.role, bb.text)
			}
			if strings.HasPrefix(a.text, bb.text) {
				return errors.New("C003", bb.role, bb.text, a.role, a.text)
			}
		}
	}

	// The escape token must be distinct from (and prefix-free against)
	// everything else it can meet in a scan.
	escapePeers := append(tokens, token{"nesting separator", c.nestSep})
	for _, t := range escapePeers {
		if c.escape == t.text {
			return errors.New("C004", c.escape, t.role)
		}
		if strings.HasPrefix(t.text, c.escape) || strings.HasPrefix(c.escape, t.text) {
			return errors.New("C003", "escape token", c.escape, t.role, t.text)
		}
	}

	// The nesting separator lives in standalone keys only; it may equal a
	// namespaced token (the defaults share ".") but must not be empty or
	// collide with the escape, which is checked above.

	if c.datePrefix != "" {
		for _, t := range []token{
			{"string marker", c.stringMarker},
			{"primitive marker", c.primitiveMarker},
			{"array marker", c.arrayMarker},
			{"object marker", c.objectMarker},
			{"terminator", c.terminator},
		} {
			if t.text == "" {
				continue
			}
			if c.datePrefix == t.text || strings.HasPrefix(t.text, c.datePrefix) || strings.HasPrefix(c.datePrefix, t.text) {
				return errors.New("C005", c.datePrefix, t.role, t.text)
			}
		}
	}

	if c.nullLiteral == c.undefinedLiteral {
		return errors.New("C007", c.nullLiteral)
	}
	return nil
}

// computeStops precomputes the stop sets for each grammatical position, so
// the hot paths never rebuild them.
func (c *Codec) computeStops() {
	add := func(dst []string, tok string) []string {
		if tok == "" {
			return dst
		}
		for _, t := range dst {
			if t == tok {
				return dst
			}
		}
		return append(dst, tok)
	}

	for _, t := range []string{c.stringMarker, c.primitiveMarker, c.arrayMarker, c.objectMarker, c.terminator, c.entrySep} {
		c.keyStops = add(c.keyStops, t)
	}
	c.valueStops = add(c.valueStops, c.entrySep)
	c.valueStops = add(c.valueStops, c.terminator)

	c.elemStops = add(c.elemStops, c.namespacedArraySep())
	c.elemStops = add(c.elemStops, c.terminator)

	for _, t := range []string{c.objectMarker, c.arrayMarker, c.stringMarker, c.primitiveMarker} {
		c.dispatch = add(c.dispatch, t)
	}
}

// namespacedArraySep returns the joiner for array items in namespaced text.
// Repeated keys have no meaning inside a single string, so the entry
// separator stands in when repetition is configured.
func (c *Codec) namespacedArraySep() string {
	if c.repeat || c.arraySep == "" {
		return c.entrySep
	}
	return c.arraySep
}
