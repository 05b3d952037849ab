// Package server provides HTTP routing and middleware for the protocol endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
//   - [RequestID] : tags every request with an X-Request-Id, reusing the client's when supplied
//   - [Logging] : one structured log line per request with status, size and duration
//   - [Recover] : turns handler panics into 500 responses
//   - [CORS] : answers preflight requests and sets Access-Control-Allow-Origin for allowed origins
//   - [Metrics.Middleware] : Prometheus request counters and latency histograms, served from /metrics
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// Handlers can name the route they served with [SetRoute] so metrics are labelled by operation instead of raw path.
package server
