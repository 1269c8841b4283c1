package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/propensity/internal/api"
	"github.com/JaimeStill/propensity/internal/app"
	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/internal/infrastructure"
	"github.com/JaimeStill/propensity/internal/service"
	"github.com/JaimeStill/propensity/pkg/middleware"
	"github.com/JaimeStill/propensity/pkg/module"
)

type Modules struct {
	API *module.Module
	App http.Handler
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	svc, err := service.New(cfg, infra)
	if err != nil {
		return nil, err
	}

	a, err := app.New(svc, svc, "", infra.Logger)
	if err != nil {
		return nil, err
	}
	a.RequireAuth(api.TrainGuard(cfg, infra))

	appStack := middleware.New()
	appStack.Use(middleware.Recover(infra.Logger))
	appStack.Use(middleware.Logger(infra.Logger.With("module", "app")))

	apiModule, err := api.NewModule(cfg, infra, svc)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
		App: appStack.Apply(a.Handler()),
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.HandleNative("/", m.App)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	}))

	router.HandleNative("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	}))

	return router
}
