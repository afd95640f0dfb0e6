// Package backend selects and opens the configured document store adapter.
package backend

import (
	"context"
	"fmt"

	"homebudget/internal/config"
	"homebudget/internal/docstore"
	"homebudget/internal/docstore/memory"
	"homebudget/internal/docstore/mongo"
	"homebudget/internal/docstore/sqlite"
	applog "homebudget/internal/log"
)

// Type represents the kind of document store backing the session.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	MongoBackend  Type = "mongo"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, MongoBackend:
		return true
	default:
		return false
	}
}

// Config holds what a backend needs to open.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// MongoDB specific
	MongoURI string
	MongoDB  string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.DocStoreBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DocStoreBackend)
	}
	return Config{
		Type:         t,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		MongoURI:     appConfig.MongoURI,
		MongoDB:      appConfig.MongoDB,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MongoBackend:
		if c.MongoURI == "" {
			return fmt.Errorf("MongoDB URI is required for mongo backend")
		}
		if c.MongoDB == "" {
			return fmt.Errorf("MongoDB database name is required for mongo backend")
		}
	}
	return nil
}

// Open creates the document store for the given configuration. The caller
// owns the returned store and must Close it on shutdown.
func Open(ctx context.Context, c Config, logger *applog.Logger) (docstore.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentDocStore)

	switch c.Type {
	case SQLiteBackend:
		st, err := sqlite.New(c.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite document store: %w", err)
		}
		logger.Info("Initialized sqlite document store", applog.FieldPath, c.SQLiteDBPath)
		return st, nil
	case MongoBackend:
		st, err := mongo.New(ctx, c.MongoURI, c.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("initialize mongo document store: %w", err)
		}
		logger.Info("Initialized mongo document store", "database", c.MongoDB)
		return st, nil
	default:
		logger.Info("Initialized in-memory document store")
		return memory.New(), nil
	}
}
