// Package templatestore keeps the email template bodies edited on the dashboard.
//
// Three backends share one contract: Get reports whether a key was ever
// set, and Set replaces the whole value. The memory backend loses its
// contents on restart; SQLite and PostgreSQL keep them.
package templatestore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/mail"
)

// Store is a key/value store for template bodies.
type Store interface {
	mail.Store
	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreMemory, "":
		return NewMemory(), nil
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("template store: unknown backend %q", cfg.Backend)
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	slog.Debug("template store: using memory backend")
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
