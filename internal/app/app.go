// Package app serves the prediction form and the training trigger.
package app

import (
	"embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/propensity/internal/prediction"
	"github.com/JaimeStill/propensity/internal/service"
	"github.com/JaimeStill/propensity/pkg/middleware"
	"github.com/JaimeStill/propensity/pkg/routes"
	"github.com/JaimeStill/propensity/pkg/web"
)

const (
	TrainSuccessMessage = "Training successful!"
	TrainErrorPrefix    = "Error occurred: "
	PredictErrorPrefix  = "Error: "
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var vehicleView = web.ViewDef{
	Template: "vehicledata.html",
	Title:    "Vehicle Insurance Propensity",
}

// App renders the form and forwards submissions to the domain service.
type App struct {
	trainer    service.Trainer
	predictor  service.Predictor
	views      *web.TemplateSet
	static     http.Handler
	trainGuard func(http.Handler) http.Handler
	logger     *slog.Logger
}

// New parses the embedded templates. basePath prefixes links rendered into pages.
func New(trainer service.Trainer, predictor service.Predictor, basePath string, logger *slog.Logger) (*App, error) {
	views, err := web.NewTemplateSet(templateFS, "templates/layout.html", "templates/views", "layout", basePath, vehicleView)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	static, err := web.Static(staticFS, "static", basePath+"/static/")
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	return &App{
		trainer:   trainer,
		predictor: predictor,
		views:     views,
		static:    static,
		logger:    logger.With("handler", "app"),
	}, nil
}

// RequireAuth wraps the training trigger with guard.
func (a *App) RequireAuth(guard func(http.Handler) http.Handler) *App {
	a.trainGuard = guard
	return a
}

// Routes returns the form, prediction, training, and asset routes.
func (a *App) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			routes.Get("/{$}", a.Index),
			routes.Post("/{$}", a.Predict),
			routes.Get("/train", middleware.Wrap(a.trainGuard, a.Train)),
			routes.Get("/static/", a.static.ServeHTTP),
		},
	}
}

// Handler returns a mux serving Routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, a.Routes())
	return mux
}

// Index renders the empty form.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	a.render(w, newPageData(nil, ""))
}

// Train runs the pipeline and reports the outcome as plain text. Failures
// are reported in the body, never as a server error.
func (a *App) Train(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := a.trainer.Train(r.Context()); err != nil {
		a.logger.Error("training failed", "error", err)
		io.WriteString(w, TrainErrorPrefix+err.Error())
		return
	}
	io.WriteString(w, TrainSuccessMessage)
}

// Predict classifies the submitted customer and re-renders the form with
// the verdict or the error text.
func (a *App) Predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.render(w, newPageData(nil, PredictErrorPrefix+err.Error()))
		return
	}

	verdict, err := a.verdict(r)
	if err != nil {
		a.logger.Warn("prediction failed", "error", err)
		verdict = PredictErrorPrefix + err.Error()
	}
	a.render(w, newPageData(r.PostForm, verdict))
}

func (a *App) verdict(r *http.Request) (string, error) {
	data, err := parseVehicleData(r.PostForm)
	if err != nil {
		return "", err
	}
	label, err := a.predictor.Predict(r.Context(), data)
	if err != nil {
		return "", err
	}
	return prediction.Message(label), nil
}

func (a *App) render(w http.ResponseWriter, data pageData) {
	if err := a.views.Render(w, http.StatusOK, vehicleView, data); err != nil {
		a.logger.Error("render failed", "error", err)
		http.Error(w, PredictErrorPrefix+err.Error(), http.StatusOK)
	}
}
