package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/propensity/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/runs",
		Routes: []routes.Route{
			routes.Get("", ok),
			routes.Get("/{id}", ok),
			routes.Post("/retry", ok),
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/runs", http.StatusOK},
		{"find", "GET", "/runs/123", http.StatusOK},
		{"post", "POST", "/runs/retry", http.StatusOK},
		{"wrong method", "POST", "/runs", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/v1",
				Routes: []routes.Route{routes.Get("/items", ok)},
			},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/items", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("nested route: got %d, want 200", rec.Code)
	}
}

func TestRouteConstructors(t *testing.T) {
	if r := routes.Get("/x", ok); r.Method != http.MethodGet || r.Pattern != "/x" {
		t.Errorf("get: got %s %s", r.Method, r.Pattern)
	}
	if r := routes.Post("/y", ok); r.Method != http.MethodPost || r.Pattern != "/y" {
		t.Errorf("post: got %s %s", r.Method, r.Pattern)
	}
}
