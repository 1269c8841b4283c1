package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/propensity/internal/api"
	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/internal/fixtures"
	"github.com/JaimeStill/propensity/internal/pipeline"
	"github.com/JaimeStill/propensity/internal/prediction"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/middleware"
	"github.com/JaimeStill/propensity/pkg/routes"
)

type stubTrainer struct {
	res *pipeline.Result
	err error
}

func (s stubTrainer) Train(context.Context) (*pipeline.Result, error) {
	return s.res, s.err
}

type stubPredictor struct {
	label int
	err   error
}

func (s stubPredictor) Predict(context.Context, prediction.VehicleData) (int, error) {
	return s.label, s.err
}

func mux(tr stubTrainer, p stubPredictor) *http.ServeMux {
	m := http.NewServeMux()
	routes.Register(m, api.NewPipelineHandler(tr, p, fixtures.Logger()).Routes())
	return m
}

const validBody = `{"Gender":1,"Age":44,"Driving_License":1,"Region_Code":28,"Previously_Insured":0,
	"Annual_Premium":40454,"Policy_Sales_Channel":26,"Vintage":217,
	"Vehicle_Age_lt_1_Year":0,"Vehicle_Age_gt_2_Years":1,"Vehicle_Damage_Yes":1}`

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no model", faults.Wrap(faults.KindPrediction, prediction.ErrNoModel), http.StatusServiceUnavailable},
		{"store unreachable", faults.New(faults.KindConnection, "timeout"), http.StatusServiceUnavailable},
		{
			"validation failed",
			&pipeline.StageError{State: pipeline.StateValidating, Err: pipeline.ErrValidationFailed},
			http.StatusUnprocessableEntity,
		},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("status: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPredict(t *testing.T) {
	rec := httptest.NewRecorder()
	mux(stubTrainer{}, stubPredictor{label: 1}).
		ServeHTTP(rec, httptest.NewRequest("POST", "/predict", strings.NewReader(validBody)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp api.PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Prediction != 1 || resp.Message != prediction.LikelyMessage {
		t.Errorf("response: got %+v", resp)
	}
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		predictor stubPredictor
		want      int
	}{
		{"malformed json", `{"Age":`, stubPredictor{}, http.StatusBadRequest},
		{"unknown field", `{"Income":1}`, stubPredictor{}, http.StatusBadRequest},
		{"no model", validBody, stubPredictor{err: prediction.ErrNoModel}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux(stubTrainer{}, tt.predictor).
				ServeHTTP(rec, httptest.NewRequest("POST", "/predict", strings.NewReader(tt.body)))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}

			var body map[string]string
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body["error"] == "" {
				t.Error("error body expected")
			}
		})
	}
}

func TestTrain(t *testing.T) {
	res := &pipeline.Result{State: pipeline.StateDone}

	rec := httptest.NewRecorder()
	mux(stubTrainer{res: res}, stubPredictor{}).ServeHTTP(rec, httptest.NewRequest("POST", "/train", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var resp api.TrainResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result == nil || resp.Result.State != pipeline.StateDone || resp.Error != "" {
		t.Errorf("response: got %+v", resp)
	}
}

func TestTrainFailure(t *testing.T) {
	res := &pipeline.Result{State: pipeline.StateFailed, FailedAt: pipeline.StateValidating}
	err := &pipeline.StageError{State: pipeline.StateValidating, Err: pipeline.ErrValidationFailed}

	rec := httptest.NewRecorder()
	mux(stubTrainer{res: res, err: err}, stubPredictor{}).ServeHTTP(rec, httptest.NewRequest("POST", "/train", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}

	var resp api.TrainResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Result == nil || resp.Result.FailedAt != pipeline.StateValidating {
		t.Errorf("failed run should still be returned: %+v", resp)
	}
	if !strings.Contains(resp.Error, "data validation failed") {
		t.Errorf("error: got %q", resp.Error)
	}
}

type tokenVerifier string

func (v tokenVerifier) Verify(_ context.Context, raw string) (*oidc.IDToken, error) {
	if raw != string(v) {
		return nil, errors.New("bad signature")
	}
	return &oidc.IDToken{Subject: "ops"}, nil
}

func TestTrainRequiresAuth(t *testing.T) {
	guard := middleware.Auth(tokenVerifier("secret"), fixtures.Logger())
	h := api.NewPipelineHandler(stubTrainer{res: &pipeline.Result{State: pipeline.StateDone}}, stubPredictor{label: 1}, fixtures.Logger()).
		RequireAuth(guard)
	m := http.NewServeMux()
	routes.Register(m, h.Routes())

	tests := []struct {
		name   string
		path   string
		header string
		body   string
		want   int
	}{
		{"train without token", "/train", "", "", http.StatusUnauthorized},
		{"train with bad token", "/train", "Bearer guess", "", http.StatusUnauthorized},
		{"train with token", "/train", "Bearer secret", "", http.StatusOK},
		{"predict stays open", "/predict", "", validBody, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSpecAuth(t *testing.T) {
	cfg := &config.Config{Version: "0.3.0"}
	cfg.API.Auth = middleware.AuthConfig{
		Enabled:  true,
		Issuer:   "https://issuer.example",
		JWKSURL:  "https://issuer.example/keys",
		ClientID: "propensity",
	}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatal(err)
	}

	train := api.Spec(cfg, false).Paths["/train"].Post
	if train.Responses[401] == nil {
		t.Error("/train should document 401 when auth is enabled")
	}
	if !slices.Contains(cfg.API.CORS.AllowedHeaders, "Authorization") {
		t.Errorf("cors headers: got %v, want Authorization allowed", cfg.API.CORS.AllowedHeaders)
	}
}

func TestSpec(t *testing.T) {
	cfg := &config.Config{Version: "0.3.0"}
	cfg.API.BasePath = "/api"
	if err := cfg.API.Finalize(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		withRuns bool
		paths    []string
	}{
		{"without run history", false, []string{"/predict", "/train"}},
		{"with run history", true, []string{"/predict", "/train", "/runs", "/runs/{id}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := api.Spec(cfg, tt.withRuns)

			if len(spec.Paths) != len(tt.paths) {
				t.Errorf("paths: got %d, want %d", len(spec.Paths), len(tt.paths))
			}
			for _, p := range tt.paths {
				if spec.Paths[p] == nil {
					t.Errorf("missing path %s", p)
				}
			}
			if spec.Info.Version != "0.3.0" {
				t.Errorf("version: got %s, want 0.3.0", spec.Info.Version)
			}
			if spec.Servers[0].URL != "/api" {
				t.Errorf("server: got %s, want /api", spec.Servers[0].URL)
			}

			if spec.Paths["/train"].Post.Responses[401] != nil {
				t.Error("/train should not document 401 when auth is disabled")
			}

			vehicle := spec.Components.Schemas["VehicleData"]
			if vehicle == nil || len(vehicle.Required) != 11 {
				t.Error("VehicleData should require all 11 inputs")
			}
		})
	}
}
