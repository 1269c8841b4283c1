// Package middleware provides an ordered HTTP middleware stack plus request
// logging, panic recovery, CORS, and bearer-token authentication.
package middleware

import "net/http"

// System manages an ordered stack of HTTP middleware. The first middleware
// added is the outermost.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack []func(http.Handler) http.Handler

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	*s = append(*s, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(*s) - 1; i >= 0; i-- {
		handler = (*s)[i](handler)
	}
	return handler
}

// Wrap applies mw to a single handler. A nil mw returns h unchanged.
func Wrap(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.HandlerFunc {
	if mw == nil {
		return h
	}
	return mw(h).ServeHTTP
}
