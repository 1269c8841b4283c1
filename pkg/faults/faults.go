// Package faults provides the error taxonomy for pipeline and serving components.
// Every component wraps failures at its boundary with a Kind and the file and line
// where the wrap occurred, so a fault surfacing at the HTTP layer still names its origin.
package faults

import (
	"errors"
	"fmt"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies the component category that produced a fault.
type Kind string

const (
	KindConnection Kind = "ConnectionError"
	KindDataAccess Kind = "DataAccessError"
	KindIngestion  Kind = "IngestionError"
	KindValidation Kind = "ValidationError"
	KindTraining   Kind = "TrainingError"
	KindEvaluation Kind = "EvaluationError"
	KindRegistry   Kind = "RegistryError"
	KindPrediction Kind = "PredictionError"
)

// Error is a fault tagged with its kind and originating source location.
type Error struct {
	Kind Kind
	File string
	Line int
	Err  error
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Wrap tags err with kind and the caller's file and line.
// Returns nil when err is nil. An error already carrying the same kind
// is returned unchanged so provenance points at the innermost wrap.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) && fe.Kind == kind {
		return err
	}

	return newError(kind, pkgerrors.WithStack(err))
}

// Wrapf wraps err with a formatted message before tagging it.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return newError(kind, pkgerrors.WithStack(fmt.Errorf("%s: %w", msg, err)))
}

// New creates a fault from a message.
func New(kind Kind, format string, args ...any) error {
	return newError(kind, pkgerrors.WithStack(fmt.Errorf(format, args...)))
}

// stacked must come from pkgerrors.WithStack inside an exported constructor,
// so the frame at index 1 is that constructor's caller.
func newError(kind Kind, stacked error) error {
	e := &Error{Kind: kind, Err: stacked}

	if st, ok := stacked.(stackTracer); ok {
		trace := st.StackTrace()
		if len(trace) > 1 {
			frame := trace[1]
			e.File = fmt.Sprintf("%s", frame)
			e.Line, _ = strconv.Atoi(fmt.Sprintf("%d", frame))
		}
	}

	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s in [%s] at line [%d]: %v", e.Kind, e.File, e.Line, pkgerrors.Cause(e.Err))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Format prints the full stack trace with %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.Kind, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Is reports whether err contains a fault of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	for err != nil {
		if !errors.As(err, &fe) {
			return false
		}
		if fe.Kind == kind {
			return true
		}
		err = fe.Err
	}
	return false
}

// KindOf returns the kind of the outermost fault in err, or "" when none exists.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
