// Package access exports document store collections as dataset frames.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/docstore"
	"github.com/JaimeStill/propensity/pkg/faults"
)

// Exporter reads whole collections from a document store.
type Exporter struct {
	finder docstore.Finder
	logger *slog.Logger
}

// New creates an Exporter over finder.
func New(finder docstore.Finder, logger *slog.Logger) *Exporter {
	return &Exporter{
		finder: finder,
		logger: logger.With("component", "access"),
	}
}

// ExportCollection returns every document of name as a frame, with the store
// identity field removed and the "na" sentinel normalized to missing.
// An unreachable or unconfigured store yields a ConnectionError; any other
// store fault yields a DataAccessError.
func (e *Exporter) ExportCollection(ctx context.Context, name string) (dataset.Frame, error) {
	start := time.Now()

	docs, err := e.finder.FindAll(ctx, name)
	if err != nil {
		if docstore.IsUnreachable(err) {
			return dataset.Frame{}, faults.Wrapf(faults.KindConnection, err, "export %s", name)
		}
		return dataset.Frame{}, faults.Wrapf(faults.KindDataAccess, err, "export %s", name)
	}

	records := make([]dataset.Record, 0, len(docs))
	for i, doc := range docs {
		rec, err := toRecord(doc)
		if err != nil {
			return dataset.Frame{}, faults.Wrapf(faults.KindDataAccess, err, "document %d of %s", i, name)
		}
		records = append(records, rec)
	}

	frame := dataset.FromRecords(records)
	e.logger.Info(
		"collection exported",
		"collection", name,
		"rows", frame.Len(),
		"columns", frame.Width(),
		"duration", time.Since(start),
	)
	return frame, nil
}

func toRecord(doc bson.D) (dataset.Record, error) {
	rec := make(dataset.Record, 0, len(doc))
	for _, elem := range doc {
		if elem.Key == dataset.IdentityColumn {
			continue
		}
		v, err := toValue(elem.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", elem.Key, err)
		}
		rec = append(rec, dataset.Field{Key: elem.Key, Value: v})
	}
	return rec, nil
}

func toValue(raw any) (dataset.Value, error) {
	switch v := raw.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return dataset.Missing, nil
	case string:
		return dataset.String(v), nil
	case int32:
		return dataset.Number(float64(v)), nil
	case int64:
		return dataset.Number(float64(v)), nil
	case float64:
		return dataset.Number(v), nil
	case bool:
		if v {
			return dataset.Number(1), nil
		}
		return dataset.Number(0), nil
	case primitive.Decimal128:
		return dataset.Parse(v.String()), nil
	default:
		return dataset.Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
