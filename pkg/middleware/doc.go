// Package middleware provides HTTP middleware for the DropKit surface:
// request logging, panic recovery, Prometheus metrics, and OpenTelemetry
// tracing.
//
// All middleware is standard func(http.Handler) http.Handler and mounts
// on any router:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Recoverer(logger))
//	r.Use(middleware.RequestLogger(logger))
//	r.Use(middleware.Metrics(middleware.WithRegistry(reg)))
//	r.Use(middleware.OpenTelemetry())
//
// Metric and span route labels use the chi route pattern rather than the
// raw URL, so path parameters never explode label cardinality.
package middleware
