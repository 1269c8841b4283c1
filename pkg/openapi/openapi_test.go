package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/propensity/pkg/openapi"
)

func newSpec(t *testing.T) *openapi.Spec {
	t.Helper()
	cfg := &openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	return openapi.NewSpec(cfg, "1.0.0")
}

func TestNewSpec(t *testing.T) {
	spec := newSpec(t)

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Propensity API" {
		t.Errorf("title: got %s, want Propensity API", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("version: got %s, want 1.0.0", spec.Info.Version)
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
	for _, name := range []string{"BadRequest", "NotFound", "ServiceUnavailable"} {
		if spec.Components.Responses[name] == nil {
			t.Errorf("missing shared response %s", name)
		}
	}
}

func TestConfig(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Staging API")

	cfg := &openapi.Config{Description: "custom"}
	if err := cfg.Finalize(&openapi.Env{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "Staging API" {
		t.Errorf("title: got %s, want Staging API", cfg.Title)
	}
	if cfg.Description != "custom" {
		t.Errorf("description: got %s, want custom", cfg.Description)
	}

	cfg.Merge(&openapi.Config{Description: "overlay"})
	if cfg.Description != "overlay" || cfg.Title != "Staging API" {
		t.Errorf("merge: got %+v", cfg)
	}
}

func TestRefs(t *testing.T) {
	if got := openapi.SchemaRef("Run").Ref; got != "#/components/schemas/Run" {
		t.Errorf("schema ref: got %s", got)
	}
	if got := openapi.ResponseRef("NotFound").Ref; got != "#/components/responses/NotFound" {
		t.Errorf("response ref: got %s", got)
	}

	body := openapi.RequestBodyJSON("VehicleData")
	if !body.Required || body.Content["application/json"].Schema.Ref != "#/components/schemas/VehicleData" {
		t.Errorf("request body: got %+v", body)
	}

	p := openapi.PathParam("id", "Run id")
	if p.In != "path" || !p.Required || p.Schema.Format != "uuid" {
		t.Errorf("path param: got %+v", p)
	}

	q := openapi.QueryParam("state", "string", "")
	if q.In != "query" || q.Required {
		t.Errorf("query param: got %+v", q)
	}
}

func TestWriteJSON(t *testing.T) {
	spec := newSpec(t)
	spec.AddServer("/api")
	spec.Components.AddSchemas(map[string]*openapi.Schema{"Run": {Type: "object"}})

	path := filepath.Join(t.TempDir(), "openapi.json")
	if err := openapi.WriteJSON(spec, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written document is not JSON: %v", err)
	}
	servers := doc["servers"].([]any)
	if servers[0].(map[string]any)["url"] != "/api" {
		t.Errorf("servers: got %v", servers)
	}
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["Run"]; !ok {
		t.Error("added schema missing from output")
	}
}

func TestServeSpec(t *testing.T) {
	rec := httptest.NewRecorder()
	openapi.ServeSpec([]byte(`{"openapi":"3.1.0"}`)).ServeHTTP(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type: got %s", ct)
	}
	if rec.Body.String() != `{"openapi":"3.1.0"}` {
		t.Errorf("body: got %s", rec.Body.String())
	}
}
