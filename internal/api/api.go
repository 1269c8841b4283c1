// Package api assembles the JSON API module: prediction, training, and run
// history.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/internal/infrastructure"
	"github.com/JaimeStill/propensity/internal/service"
	"github.com/JaimeStill/propensity/pkg/middleware"
	"github.com/JaimeStill/propensity/pkg/module"
	"github.com/JaimeStill/propensity/pkg/openapi"
	"github.com/JaimeStill/propensity/pkg/routes"
)

// TrainGuard returns the bearer-token middleware for training routes, or nil
// when auth is disabled.
func TrainGuard(cfg *config.Config, infra *infrastructure.Infrastructure) func(http.Handler) http.Handler {
	if !cfg.API.Auth.Enabled {
		return nil
	}
	verifier := middleware.NewVerifier(infra.Lifecycle.Context(), &cfg.API.Auth)
	return middleware.Auth(verifier, infra.Logger.With("system", "auth"))
}

// NewModule creates the API module mounted at cfg.API.BasePath.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure, svc *service.Service) (*module.Module, error) {
	logger := infra.Logger.With("module", "api")

	groups := []routes.Group{
		NewPipelineHandler(svc, svc, logger).RequireAuth(TrainGuard(cfg, infra)).Routes(),
	}
	runs := svc.Runs()
	if runs != nil {
		groups = append(groups, runs.Handler().Routes())
	}

	doc, err := openapi.MarshalJSON(Spec(cfg, runs != nil))
	if err != nil {
		return nil, fmt.Errorf("render openapi: %w", err)
	}

	mux := http.NewServeMux()
	routes.Register(mux, groups...)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(doc))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(logger))
	return m, nil
}
