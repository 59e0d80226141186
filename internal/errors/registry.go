package errors

// template defines a registered error type. Message may contain fmt verbs
// filled by New.
type template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]template{
	// ============================================
	// Configuration errors (C001-C099)
	// ============================================

	"C001": {
		Category:   CategoryConfig,
		Message:    "%s must not be empty",
		Suggestion: "Every enabled marker and separator needs at least one character. Disable a marker with its Without option instead of setting it to the empty string.",
	},
	"C002": {
		Category:   CategoryConfig,
		Message:    "%s %q collides with %s",
		Suggestion: "Every enabled marker and separator must be textually distinct; pick a character that is not already in use.",
	},
	"C003": {
		Category:   CategoryConfig,
		Message:    "%s %q is a prefix of %s %q",
		Suggestion: "No enabled token may be a prefix of another, otherwise scanning is ambiguous.",
	},
	"C004": {
		Category:   CategoryConfig,
		Message:    "escape token %q collides with %s",
		Suggestion: "The escape token must be distinct from every other enabled token.",
	},
	"C005": {
		Category:   CategoryConfig,
		Message:    "date prefix %q collides with %s %q",
		Suggestion: "The date prefix must not match or prefix any marker; choose another prefix or disable date prefixing.",
	},
	"C006": {
		Category:   CategoryConfig,
		Message:    "%s cannot be disabled for a namespaced codec",
		Suggestion: "Namespaced text cannot be parsed unambiguously without it; combine the Without option with FieldsOnly().",
	},
	"C007": {
		Category:   CategoryConfig,
		Message:    "null literal %q collides with undefined literal",
		Suggestion: "The null and undefined sentinel strings must differ.",
	},

	// ============================================
	// Usage errors (U001-U099)
	// ============================================

	"U001": {
		Category:   CategoryUsage,
		Message:    "namespaced layout is disabled for this codec",
		Suggestion: "This codec was built with FieldsOnly(); use StringifyFields/ParseFields, or construct a codec without FieldsOnly().",
	},
}
