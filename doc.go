// Package urlstate keeps application state in the URL.
//
// It serializes arbitrary value trees (objects, arrays, strings, numbers,
// booleans, times, null) into compact query-string text and back, in either
// a single namespaced parameter or a flat field map. The root package is the
// URL boundary: it percent-escapes on the way out and tolerantly unescapes
// on the way in. The raw grammar lives in pkg/codec, the value model in
// pkg/value, and the surrounding machinery (subscribable stores, HTTP
// middleware, live sync, snapshot storage) under pkg/.
package urlstate
