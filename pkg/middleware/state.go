package middleware

import (
	"context"
	"net/http"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/value"
)

// Layout selects which query layout the State middleware reads.
type Layout int

const (
	// LayoutStandalone reads the whole query string as flat fields.
	LayoutStandalone Layout = iota

	// LayoutNamespaced reads one query parameter holding namespaced text.
	LayoutNamespaced
)

func (l Layout) String() string {
	if l == LayoutNamespaced {
		return "namespaced"
	}
	return "standalone"
}

type stateKey struct{}

// StateConfig configures the State middleware.
type StateConfig struct {
	// Layout selects standalone (default) or namespaced decoding.
	Layout Layout

	// Param is the query parameter holding namespaced text
	// (default: "state"). Ignored for the standalone layout.
	Param string

	// Hint guides scalar typing during decoding.
	Hint value.Value
}

// StateOption configures the State middleware.
type StateOption func(*StateConfig)

// WithLayout selects the query layout to decode.
func WithLayout(l Layout) StateOption {
	return func(c *StateConfig) { c.Layout = l }
}

// WithParam sets the query parameter read in the namespaced layout.
func WithParam(name string) StateOption {
	return func(c *StateConfig) { c.Param = name }
}

// WithHint sets the shape hint applied to every decode.
func WithHint(h value.Value) StateOption {
	return func(c *StateConfig) { c.Hint = h }
}

// State decodes URL state from each request's query string and stores the
// result in the request context for handlers to read via FromContext.
// Decoding is total, so the middleware never rejects a request; a request
// with no state yields the empty object.
//
// Mount it on any chi (or plain net/http) stack:
//
//	r := chi.NewRouter()
//	r.Use(middleware.State(engine))
//	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
//	    state := middleware.FromContext(r.Context())
//	    ...
//	})
func State(engine *urlstate.Engine, opts ...StateOption) func(http.Handler) http.Handler {
	config := StateConfig{Layout: LayoutStandalone, Param: "state"}
	for _, opt := range opts {
		opt(&config)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var state value.Value
			switch config.Layout {
			case LayoutNamespaced:
				text := r.URL.Query().Get(config.Param)
				// Already unescaped by Query; parse the raw grammar.
				state = engine.Codec().DecodeText(text, config.Hint)
			default:
				state = engine.ParseQuery(r.URL.RawQuery, config.Hint)
			}
			ctx := context.WithValue(r.Context(), stateKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the state decoded by the State middleware, or the
// undefined value when none was decoded.
func FromContext(ctx context.Context) value.Value {
	if v, ok := ctx.Value(stateKey{}).(value.Value); ok {
		return v
	}
	return value.Undefined()
}
