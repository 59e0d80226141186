package codec

import (
	"strings"
	"unicode/utf8"
)

// escapeText returns s with every occurrence of a special token prefixed by
// the escape token. The escape token itself is only escaped when it is
// listed in specials for this position; an unlisted escape character passes
// through verbatim. That keeps custom configurations where the escape
// character appears in payload text ambiguous to re-parse — a known
// limitation carried deliberately (see the package doc).
func (c *Codec) escapeText(s string, specials []string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		matched := ""
		for _, tok := range specials {
			if tok != "" && strings.HasPrefix(s[i:], tok) {
				matched = tok
				break
			}
		}
		if matched != "" {
			b.WriteString(c.escape)
			b.WriteString(matched)
			i += len(matched)
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// scanner is a cursor over encoded text. It never over-reads: every read
// primitive stops exactly at the first unescaped stop token or at the end of
// input.
type scanner struct {
	src string
	pos int
	esc string
}

func newScanner(src string, escape string) *scanner {
	return &scanner{src: src, esc: escape}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

// peekAny returns the first token in tokens that the input starts with at
// the cursor, or "" when none match. Construction-time prefix validation
// makes the first match the only match.
func (s *scanner) peekAny(tokens []string) string {
	for _, tok := range tokens {
		if tok != "" && strings.HasPrefix(s.src[s.pos:], tok) {
			return tok
		}
	}
	return ""
}

// consume advances past tok if the input starts with it.
func (s *scanner) consume(tok string) bool {
	if tok != "" && strings.HasPrefix(s.src[s.pos:], tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

// readUntil consumes one lexeme: characters up to (not including) the first
// unescaped stop token, or the rest of the input. The escape token
// unconditionally consumes the next character literally, even if that
// character is not special here; a dangling escape at end of input is kept
// as a literal escape character rather than treated as an error. The second
// result reports whether any escape was consumed, which callers use to
// suppress heuristic type detection on the lexeme.
func (s *scanner) readUntil(stops []string) (string, bool) {
	var b strings.Builder
	escaped := false
	for !s.eof() {
		if strings.HasPrefix(s.src[s.pos:], s.esc) {
			s.pos += len(s.esc)
			escaped = true
			if s.eof() {
				b.WriteString(s.esc)
				break
			}
			_, size := utf8.DecodeRuneInString(s.src[s.pos:])
			b.WriteString(s.src[s.pos : s.pos+size])
			s.pos += size
			continue
		}
		if s.peekAny(stops) != "" {
			break
		}
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		b.WriteString(s.src[s.pos : s.pos+size])
		s.pos += size
	}
	return b.String(), escaped
}

// containsUnescaped reports whether text contains any of the tokens outside
// an escape sequence, using the same consumption rule as readUntil. Used for
// the object-vs-scalar decision on namespaced input and for splitting joined
// standalone arrays.
func containsUnescaped(text, escape string, tokens []string) bool {
	sc := newScanner(text, escape)
	for !sc.eof() {
		if strings.HasPrefix(sc.src[sc.pos:], escape) {
			sc.pos += len(escape)
			if !sc.eof() {
				_, size := utf8.DecodeRuneInString(sc.src[sc.pos:])
				sc.pos += size
			}
			continue
		}
		if sc.peekAny(tokens) != "" {
			return true
		}
		_, size := utf8.DecodeRuneInString(sc.src[sc.pos:])
		sc.pos += size
	}
	return false
}

// splitUnescaped splits text on the separator, honoring escapes. The
// separator is removed and escape sequences are resolved in the returned
// parts; the parallel bool slice records which parts consumed an escape.
func splitUnescaped(text, escape, sep string) ([]string, []bool) {
	sc := newScanner(text, escape)
	var parts []string
	var escaped []bool
	stops := []string{sep}
	for {
		part, esc := sc.readUntil(stops)
		parts = append(parts, part)
		escaped = append(escaped, esc)
		if !sc.consume(sep) {
			break
		}
		if sc.eof() {
			parts = append(parts, "")
			escaped = append(escaped, false)
			break
		}
	}
	return parts, escaped
}
