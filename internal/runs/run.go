// Package runs persists training pipeline run history in PostgreSQL.
package runs

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/propensity/internal/pipeline"
	"github.com/JaimeStill/propensity/pkg/query"
	"github.com/JaimeStill/propensity/pkg/repository"
)

var (
	ErrNotFound      = errors.New("run not found")
	ErrDuplicate     = errors.New("run already recorded")
	ErrInvalidFilter = errors.New("invalid run filter")
)

// MapHTTPStatus maps run errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Run is one recorded pipeline run.
type Run struct {
	ID               uuid.UUID `json:"id"`
	State            string    `json:"state"`
	FailedAt         string    `json:"failed_at,omitempty"`
	Error            string    `json:"error,omitempty"`
	Dir              string    `json:"dir"`
	TrainedF1        *float64  `json:"trained_f1,omitempty"`
	BestF1           *float64  `json:"best_f1,omitempty"`
	ChangedAccuracy  *float64  `json:"changed_accuracy,omitempty"`
	Accepted         bool      `json:"accepted"`
	Promoted         bool      `json:"promoted"`
	RegistryLocation string    `json:"registry_location,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// FromResult flattens a pipeline result into a Run.
func FromResult(r *pipeline.Result) Run {
	run := Run{
		ID:         r.ID,
		State:      string(r.State),
		FailedAt:   string(r.FailedAt),
		Error:      r.Error,
		Dir:        r.Dir,
		Promoted:   r.Promoted(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.Trainer != nil {
		f1 := r.Trainer.Metric.F1
		run.TrainedF1 = &f1
	}
	if ev := r.Evaluation; ev != nil {
		diff := ev.ChangedAccuracy
		run.BestF1 = ev.BestF1
		run.ChangedAccuracy = &diff
		run.Accepted = ev.Accepted
		run.RegistryLocation = ev.RegistryLocation
	}
	return run
}

var projection = query.NewProjection("runs").
	Project("id", "id").
	Project("state", "state").
	Project("failed_at", "failed_at").
	Project("error", "error").
	Project("dir", "dir").
	Project("trained_f1", "trained_f1").
	Project("best_f1", "best_f1").
	Project("changed_accuracy", "changed_accuracy").
	Project("accepted", "accepted").
	Project("promoted", "promoted").
	Project("registry_location", "registry_location").
	Project("started_at", "started_at").
	Project("finished_at", "finished_at")

var defaultSort = query.SortField{Field: "started_at", Descending: true}

// Filters narrows a run listing. Nil fields do not filter.
type Filters struct {
	State    *string
	Accepted *bool
	Promoted *bool
	Sort     []query.SortField
}

// FiltersFromQuery reads state, accepted, promoted, and sort from values.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters
	var err error

	if v := values.Get("state"); v != "" {
		f.State = &v
	}
	if f.Accepted, err = optionalBool(values, "accepted"); err != nil {
		return Filters{}, err
	}
	if f.Promoted, err = optionalBool(values, "promoted"); err != nil {
		return Filters{}, err
	}
	f.Sort = query.ParseSortFields(values.Get("sort"))
	return f, nil
}

func optionalBool(values url.Values, name string) (*bool, error) {
	v := values.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, v)
	}
	return &b, nil
}

func (f Filters) apply(b *query.Builder) *query.Builder {
	b.WhereEquals("state", ptrValue(f.State)).
		WhereEquals("accepted", ptrValue(f.Accepted)).
		WhereEquals("promoted", ptrValue(f.Promoted))
	return b.OrderBy(f.Sort)
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	err := s.Scan(
		&r.ID, &r.State, &r.FailedAt, &r.Error, &r.Dir,
		&r.TrainedF1, &r.BestF1, &r.ChangedAccuracy,
		&r.Accepted, &r.Promoted, &r.RegistryLocation,
		&r.StartedAt, &r.FinishedAt,
	)
	return r, err
}
