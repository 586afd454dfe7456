package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"framecore/internal/errx"
	"framecore/internal/store"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SessionSnapshot is the state carried across a reload within one session.
type SessionSnapshot struct {
	Version      int      `json:"version,omitempty"`
	RecentLinks  []string `json:"recentLinks"`
	LastPosition *Point   `json:"lastPosition,omitempty"`
	Timestamp    int64    `json:"timestamp"`
}

type stateEnvelope struct {
	V     int             `json:"v"`
	State SessionSnapshot `json:"state"`
}

var stateDecoders = map[int]func([]byte) (SessionSnapshot, error){
	1: func(data []byte) (SessionSnapshot, error) {
		var env stateEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return SessionSnapshot{}, fmt.Errorf("decode state v1: %w", err)
		}
		return env.State, nil
	},
}

// CompressAndSaveState replaces the session snapshot with s.
func (e *Engine) CompressAndSaveState(ctx context.Context, s SessionSnapshot) error {
	const op = "storage.CompressAndSaveState"
	if e.medium == nil {
		return errx.E(op, errx.Unavailable, errors.New("no session storage"))
	}

	data, err := json.Marshal(stateEnvelope{V: SchemaVersion, State: s})
	if err != nil {
		e.logger.Error("state serialization failed", "error", err)
		return errx.E(op, errx.Internal, fmt.Errorf("encode state: %w", err))
	}
	text, err := Compress(data)
	if err != nil {
		e.logger.Error("state compression failed", "error", err)
		return errx.E(op, errx.Internal, err)
	}
	if err := e.medium.Set(ctx, store.ScopeSession, StateKey, text); err != nil {
		e.logger.Error("state save failed", "error", err)
		return errx.E(op, writeKind(err), err)
	}

	e.logger.Debug("state saved", "raw_bytes", len(data), "stored_bytes", len(text))
	return nil
}

// LoadAndDecompressState returns the session snapshot, or false when there is
// none or it cannot be read under the current schema version.
func (e *Engine) LoadAndDecompressState(ctx context.Context) (*SessionSnapshot, bool) {
	if e.medium == nil {
		return nil, false
	}

	text, ok, err := e.medium.Get(ctx, store.ScopeSession, StateKey)
	if err != nil {
		e.logger.Warn("state load failed", "error", err)
		return nil, false
	}
	if !ok || text == "" {
		return nil, false
	}

	data, err := Decompress(text)
	if err != nil {
		e.logger.Warn("state decompression failed", "error", err)
		return nil, false
	}

	s, err := decodeTagged(data, stateDecoders)
	if err != nil {
		e.logger.Warn("state rejected", "error", err)
		return nil, false
	}
	return &s, true
}

// ClearState removes the session snapshot.
func (e *Engine) ClearState(ctx context.Context) error {
	if e.medium == nil {
		return errx.E("storage.ClearState", errx.Unavailable, errors.New("no session storage"))
	}
	if err := e.medium.Remove(ctx, store.ScopeSession, StateKey); err != nil {
		return errx.E("storage.ClearState", errx.Internal, err)
	}
	return nil
}

// SnapshotNow captures the current recent links into a snapshot.
func (e *Engine) SnapshotNow(ctx context.Context, lastPosition *Point) SessionSnapshot {
	links := e.RecentLinks(ctx)
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	return SessionSnapshot{
		RecentLinks:  urls,
		LastPosition: lastPosition,
		Timestamp:    e.now(),
	}
}

// RestoreState re-saves the snapshot's links so the recent list matches the
// snapshot order. It returns how many links were restored.
func (e *Engine) RestoreState(ctx context.Context) (int, error) {
	s, ok := e.LoadAndDecompressState(ctx)
	if !ok {
		return 0, nil
	}

	restored := 0
	for i := len(s.RecentLinks) - 1; i >= 0; i-- {
		err := e.SaveLink(ctx, s.RecentLinks[i])
		if errx.KindOf(err) == errx.Invalid {
			continue
		}
		if err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}
