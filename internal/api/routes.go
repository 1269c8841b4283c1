package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/propensity/internal/pipeline"
	"github.com/JaimeStill/propensity/internal/prediction"
	"github.com/JaimeStill/propensity/internal/service"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/handlers"
	"github.com/JaimeStill/propensity/pkg/middleware"
	"github.com/JaimeStill/propensity/pkg/routes"
)

const maxPredictBody = 1 << 16

// PredictResponse is the body of a successful prediction.
type PredictResponse struct {
	Prediction int    `json:"prediction"`
	Message    string `json:"message"`
}

// TrainResponse is the body of a training request. Result is present
// whenever a run started, including failed runs.
type TrainResponse struct {
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// MapHTTPStatus maps domain faults to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, prediction.ErrNoModel), faults.Is(err, faults.KindConnection):
		return http.StatusServiceUnavailable
	case errors.Is(err, pipeline.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// PipelineHandler serves prediction and training over JSON.
type PipelineHandler struct {
	trainer    service.Trainer
	predictor  service.Predictor
	trainGuard func(http.Handler) http.Handler
	logger     *slog.Logger
}

// NewPipelineHandler creates a PipelineHandler.
func NewPipelineHandler(trainer service.Trainer, predictor service.Predictor, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		trainer:   trainer,
		predictor: predictor,
		logger:    logger.With("handler", "pipeline"),
	}
}

// RequireAuth wraps the training route with guard.
func (h *PipelineHandler) RequireAuth(guard func(http.Handler) http.Handler) *PipelineHandler {
	h.trainGuard = guard
	return h
}

// Routes returns the prediction and training routes.
func (h *PipelineHandler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			routes.Post("/predict", h.Predict),
			routes.Post("/train", middleware.Wrap(h.trainGuard, h.Train)),
		},
	}
}

// Predict classifies the customer in the request body.
func (h *PipelineHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var data prediction.VehicleData

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	label, err := h.predictor.Predict(r.Context(), data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, PredictResponse{
		Prediction: label,
		Message:    prediction.Message(label),
	})
}

// Train runs the pipeline and returns the run result.
func (h *PipelineHandler) Train(w http.ResponseWriter, r *http.Request) {
	res, err := h.trainer.Train(r.Context())
	if err != nil {
		h.logger.Error("training failed", "error", err)
		handlers.RespondJSON(w, MapHTTPStatus(err), TrainResponse{Result: res, Error: err.Error()})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, TrainResponse{Result: res})
}
