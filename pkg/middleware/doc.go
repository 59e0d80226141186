// Package middleware provides net/http middleware for services that keep
// state in the URL.
//
// State decodes each request's query string into a value tree and stores it
// on the request context; Prometheus and OpenTelemetry add metrics and
// tracing around the same requests. All three return standard
// func(http.Handler) http.Handler and mount directly on a chi router:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus())
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.State(engine))
package middleware
