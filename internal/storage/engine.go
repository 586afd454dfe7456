// Package storage persists the recent-link LRU list and the compressed
// session snapshot on top of a key/value medium.
//
// Read paths never fail: a missing medium, corrupt data or an unknown schema
// version all collapse to an empty result. Write paths return *errx.Error so
// the caller can tell a full store (errx.Quota) from any other failure.
package storage

import (
	"context"
	"log/slog"

	"framecore/internal/clock"
	"framecore/internal/store"
)

const (
	LinksKey = "recentLinks"
	StateKey = "frameState"

	SchemaVersion = 1
	MaxLinks      = 10
)

// Medium is the key/value persistence the engine writes to. *store.Store
// satisfies it.
type Medium interface {
	Get(ctx context.Context, scope store.Scope, key string) (string, bool, error)
	Set(ctx context.Context, scope store.Scope, key, value string) error
	Remove(ctx context.Context, scope store.Scope, key string) error
}

type Engine struct {
	medium   Medium
	logger   *slog.Logger
	clock    clock.Clock
	maxLinks int
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithMaxLinks overrides the recent-link capacity.
func WithMaxLinks(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLinks = n
		}
	}
}

// New returns an engine over m. A nil medium is allowed and models an
// environment without persistent storage: reads are empty, writes fail with
// errx.Unavailable.
func New(m Medium, opts ...Option) *Engine {
	e := &Engine{
		medium:   m,
		logger:   slog.Default(),
		clock:    clock.Real{},
		maxLinks: MaxLinks,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) now() int64 { return clock.Millis(e.clock.Now()) }
