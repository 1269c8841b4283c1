package web_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/JaimeStill/propensity/pkg/web"
)

var testFS = fstest.MapFS{
	"templates/layout.html": {Data: []byte(
		`{{ define "layout" }}<title>{{ .Title }}</title><base href="{{ .BasePath }}">{{ template "content" . }}{{ end }}`,
	)},
	"templates/views/home.html": {Data: []byte(
		`{{ define "content" }}<p>{{ .Data }}</p>{{ end }}`,
	)},
	"templates/views/broken.html": {Data: []byte(
		`{{ define "content" }}{{ .Data.Missing }}{{ end }}`,
	)},
	"static/style.css": {Data: []byte("body { margin: 0; }")},
}

var (
	homeView   = web.ViewDef{Template: "home.html", Title: "Home"}
	brokenView = web.ViewDef{Template: "broken.html", Title: "Broken"}
)

func templates(t *testing.T) *web.TemplateSet {
	t.Helper()
	ts, err := web.NewTemplateSet(testFS, "templates/*.html", "templates/views", "layout", "/", homeView, brokenView)
	if err != nil {
		t.Fatalf("template set: %v", err)
	}
	return ts
}

func TestRender(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := templates(t).Render(rec, http.StatusOK, homeView, "<hello>"); err != nil {
		t.Fatalf("render: %v", err)
	}

	body := rec.Body.String()
	for _, want := range []string{"<title>Home</title>", `<base href="/">`, "<p>&lt;hello&gt;</p>"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %s", want, body)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content-type: got %s", ct)
	}
}

func TestRenderUnknownView(t *testing.T) {
	err := templates(t).Render(httptest.NewRecorder(), http.StatusOK, web.ViewDef{Template: "nope.html"}, nil)
	if err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestRenderErrorWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := templates(t).Render(rec, http.StatusOK, brokenView, 42); err == nil {
		t.Fatal("expected template execution error")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("partial output written: %s", rec.Body.String())
	}
}

func TestPageHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	templates(t).PageHandler(homeView).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestStatic(t *testing.T) {
	handler, err := web.Static(testFS, "static", "/static/")
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/static/style.css", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "margin") {
		t.Errorf("body: got %s", rec.Body.String())
	}
}
