// Package codec serializes value trees to and from compact URL-safe text.
//
// Two layouts are supported. The namespaced layout packs a whole tree into
// one string ("count:5,nested.hello=World"); the standalone layout flattens
// it into query-style key/value fields. Each layout works in two modes:
// typed, where a marker before every scalar makes the text self-describing,
// and plain, where types are recovered from a caller-supplied hint or from
// heuristics (boolean, then date, then number).
//
// All tokens of the grammar are configurable through Options and validated
// once at construction, so a *Codec is immutable and safe for concurrent
// use.
//
// Escaping has one deliberate limitation: the escape token consumes exactly
// the next character, and is itself escaped only where it is structural.
// Payload text containing the escape character in a non-structural position
// therefore does not round-trip; choose an escape token outside the payload
// alphabet.
//
// A related namespaced ambiguity: an array holding a single empty string is
// indistinguishable from a trailing element separator, so [""] decodes as the
// empty array. Guarding the element with an escape would decode as a literal
// escape character instead, so the ambiguity is left in place.
package codec
