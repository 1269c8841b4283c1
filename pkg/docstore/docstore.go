// Package docstore provides the MongoDB document store connection with
// lifecycle coordination. One System is created per process and injected
// into every component that reads collections.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JaimeStill/propensity/pkg/lifecycle"
)

// ErrNoConnectionString indicates the store URL was not configured.
var ErrNoConnectionString = errors.New("document store connection string not set")

// Finder reads every document of a named collection in natural order.
type Finder interface {
	FindAll(ctx context.Context, collection string) ([]bson.D, error)
}

// System manages the document store connection and lifecycle coordination.
type System interface {
	Finder
	// Start registers startup ping and shutdown disconnect hooks.
	Start(lc *lifecycle.Coordinator) error
}

type mongoStore struct {
	client      *mongo.Client
	database    string
	logger      *slog.Logger
	connTimeout time.Duration
}

type unconfigured struct {
	logger *slog.Logger
}

// New creates the document store system. The driver connects lazily, so no
// network call is made here. When cfg.URL is empty the returned System fails
// every read with ErrNoConnectionString.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "docstore")

	if cfg.URL == "" {
		return &unconfigured{logger: logger}, nil
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetServerSelectionTimeout(cfg.ConnTimeoutDuration())

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("create docstore client: %w", err)
	}

	return &mongoStore{
		client:      client,
		database:    cfg.Database,
		logger:      logger,
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (m *mongoStore) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting docstore connection")

	lc.OnStartupErr("docstore", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, m.connTimeout)
		defer cancel()

		if err := m.client.Ping(pingCtx, readpref.Primary()); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		m.logger.Info("docstore connection established", "database", m.database)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		m.logger.Info("closing docstore connection")

		ctx, cancel := context.WithTimeout(context.Background(), m.connTimeout)
		defer cancel()

		if err := m.client.Disconnect(ctx); err != nil {
			m.logger.Error("docstore disconnect failed", "error", err)
			return
		}
		m.logger.Info("docstore connection closed")
	})

	return nil
}

func (m *mongoStore) FindAll(ctx context.Context, collection string) ([]bson.D, error) {
	cursor, err := m.client.Database(m.database).Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}

	m.logger.Info("collection fetched", "collection", collection, "documents", len(docs))
	return docs, nil
}

func (u *unconfigured) Start(_ *lifecycle.Coordinator) error {
	u.logger.Warn("docstore url not configured; training is unavailable")
	return nil
}

func (u *unconfigured) FindAll(_ context.Context, _ string) ([]bson.D, error) {
	return nil, ErrNoConnectionString
}

// IsUnreachable reports whether err means the store could not be contacted,
// as opposed to a fault while reading from a live store.
func IsUnreachable(err error) bool {
	if errors.Is(err, ErrNoConnectionString) {
		return true
	}
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}
