package codec

// Option configures a Codec under construction.
type Option func(*builder)

// builder carries the in-progress configuration plus flags New needs for
// validation and mode-dependent defaults.
type builder struct {
	c            *Codec
	escapeSet    bool
	primitiveOff bool
	arrayOff     bool
}

// Plain selects plain mode: no type markers on scalars; parsing relies on
// hints and heuristic detection. The default escape token becomes "_".
func Plain() Option {
	return func(b *builder) { b.c.mode = ModePlain }
}

// FieldsOnly disables the namespaced layout. Required when disabling the
// primitive or array marker.
func FieldsOnly() Option {
	return func(b *builder) { b.c.fieldsOnly = true }
}

// WithEntrySeparator sets the separator between object entries (default ",").
func WithEntrySeparator(s string) Option {
	return func(b *builder) { b.c.entrySep = s }
}

// WithNestingSeparator sets the separator between path segments in standalone
// field names (default ".").
func WithNestingSeparator(s string) Option {
	return func(b *builder) { b.c.nestSep = s }
}

// WithArraySeparator sets a literal joiner for array items, replacing the
// default repeated-key representation in the standalone layout.
func WithArraySeparator(s string) Option {
	return func(b *builder) {
		b.c.arraySep = s
		b.c.repeat = false
	}
}

// WithRepeatedKeys represents standalone arrays as repeated fields (the
// default).
func WithRepeatedKeys() Option {
	return func(b *builder) {
		b.c.arraySep = ""
		b.c.repeat = true
	}
}

// WithEscape sets the escape token (default "/" in typed mode, "_" in plain
// mode).
func WithEscape(s string) Option {
	return func(b *builder) {
		b.c.escape = s
		b.escapeSet = true
	}
}

// WithStringMarker sets the marker preceding string values (default "=").
func WithStringMarker(s string) Option {
	return func(b *builder) { b.c.stringMarker = s }
}

// WithPrimitiveMarker sets the marker preceding null, undefined, boolean and
// numeric values (default ":").
func WithPrimitiveMarker(s string) Option {
	return func(b *builder) { b.c.primitiveMarker = s }
}

// WithoutPrimitiveMarker disables the primitive marker. Only valid together
// with FieldsOnly.
func WithoutPrimitiveMarker() Option {
	return func(b *builder) {
		b.c.primitiveMarker = ""
		b.primitiveOff = true
	}
}

// WithArrayMarker sets the marker preceding arrays (default "@").
func WithArrayMarker(s string) Option {
	return func(b *builder) { b.c.arrayMarker = s }
}

// WithoutArrayMarker disables the array marker. Only valid together with
// FieldsOnly.
func WithoutArrayMarker() Option {
	return func(b *builder) {
		b.c.arrayMarker = ""
		b.arrayOff = true
	}
}

// WithObjectMarker sets the marker introducing nested objects (default ".").
func WithObjectMarker(s string) Option {
	return func(b *builder) { b.c.objectMarker = s }
}

// WithTerminator sets the token closing arrays and objects (default ";").
func WithTerminator(s string) Option {
	return func(b *builder) { b.c.terminator = s }
}

// WithDatePrefix sets the token prefixed to encoded times (default "D").
func WithDatePrefix(s string) Option {
	return func(b *builder) { b.c.datePrefix = s }
}

// WithoutDatePrefix disables date prefixing. Times still encode per the date
// style; recovering them then requires a hint.
func WithoutDatePrefix() Option {
	return func(b *builder) { b.c.datePrefix = "" }
}

// WithNullLiteral sets the sentinel text for null (default "null").
func WithNullLiteral(s string) Option {
	return func(b *builder) { b.c.nullLiteral = s }
}

// WithUndefinedLiteral sets the sentinel text for undefined (default
// "undefined").
func WithUndefinedLiteral(s string) Option {
	return func(b *builder) { b.c.undefinedLiteral = s }
}

// WithBooleanStyle selects textual or digit booleans (default BooleanText).
func WithBooleanStyle(s BooleanStyle) Option {
	return func(b *builder) { b.c.boolStyle = s }
}

// WithDateStyle selects timestamp or ISO time encoding (default
// DateTimestamp).
func WithDateStyle(s DateStyle) Option {
	return func(b *builder) { b.c.dateStyle = s }
}

// WithIndexStyle selects dotted or bracketed array indexes in standalone
// field paths (default IndexDot).
func WithIndexStyle(s IndexStyle) Option {
	return func(b *builder) { b.c.indexStyle = s }
}

// WithAutoNumbers toggles heuristic number detection (default on).
func WithAutoNumbers(on bool) Option {
	return func(b *builder) { b.c.autoNumbers = on }
}

// WithAutoBooleans toggles heuristic boolean detection (default on).
func WithAutoBooleans(on bool) Option {
	return func(b *builder) { b.c.autoBooleans = on }
}

// WithAutoDates toggles heuristic date detection (default on).
func WithAutoDates(on bool) Option {
	return func(b *builder) { b.c.autoDates = on }
}

// WithEmptyArrayLiteral sets the stand-in value emitted for an empty array in
// the standalone layout. Without it the field is omitted entirely.
func WithEmptyArrayLiteral(s string) Option {
	return func(b *builder) {
		b.c.emptyArray = s
		b.c.emptyArraySet = true
	}
}

// WithoutEmptyArrayFields omits standalone fields for empty arrays (the
// default).
func WithoutEmptyArrayFields() Option {
	return func(b *builder) {
		b.c.emptyArray = ""
		b.c.emptyArraySet = false
	}
}
