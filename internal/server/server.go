// package server contains the router, middleware and lifecycle for the local export web page
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route binds a handler to a method and path.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Handler is implemented by groups of endpoints that register themselves on a [Router].
type Handler interface {
	Routes() []Route // Routes returns every method/path pair this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Mount(handler Handler)                            // Mount registers every route of a [Handler]
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}
