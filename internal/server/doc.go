// Package server provides HTTP routing, middleware, and lifecycle management for the local web page.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order so the first one added runs outermost, following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] for paths and keeps a method table per path,
// answering 405 with an Allow header for unregistered methods.
//
// # Handler Interface
//
// Groups of endpoints implement [Handler] and return their [Route] list, which [BasicRouter.Mount] registers.
// This keeps route definitions inside the implementation (see internal/web).
//
// # Middleware
//
//   - [Logging] : one structured log line per request
//   - [Recover] : converts handler panics into 500 responses
//
// # Lifecycle
//
// [ServeListener] runs the http.Server next to a shutdown watcher in an errgroup;
// cancelling the context triggers a graceful shutdown.
package server
