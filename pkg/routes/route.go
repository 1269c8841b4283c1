// Package routes declares method-scoped route groups for http.ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Get declares a GET route.
func Get(pattern string, h http.HandlerFunc) Route {
	return Route{Method: http.MethodGet, Pattern: pattern, Handler: h}
}

// Post declares a POST route.
func Post(pattern string, h http.HandlerFunc) Route {
	return Route{Method: http.MethodPost, Pattern: pattern, Handler: h}
}
