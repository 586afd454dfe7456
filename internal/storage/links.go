package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"framecore/internal/errx"
	"framecore/internal/store"
)

type RecentLink struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"` // epoch ms of the last save
	Title     string `json:"title,omitempty"`
}

type StoredLinkCollection struct {
	Version int          `json:"version"`
	Links   []RecentLink `json:"links"`
}

var linkDecoders = map[int]func([]byte) ([]RecentLink, error){
	1: func(data []byte) ([]RecentLink, error) {
		var c StoredLinkCollection
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode links v1: %w", err)
		}
		return c.Links, nil
	},
}

// RecentLinks returns the stored links, most recent first. Entries whose URL
// is not an absolute http(s) URL are dropped. A collection written under
// another schema version is deleted.
func (e *Engine) RecentLinks(ctx context.Context) []RecentLink {
	if e.medium == nil {
		return []RecentLink{}
	}

	raw, ok, err := e.medium.Get(ctx, store.ScopeLocal, LinksKey)
	if err != nil {
		e.logger.Warn("load recent links", "error", err)
		return []RecentLink{}
	}
	if !ok || raw == "" {
		return []RecentLink{}
	}

	links, err := decodeTagged([]byte(raw), linkDecoders)
	var mismatch errUnknownVersion
	if errors.As(err, &mismatch) {
		e.logger.Warn("discarding recent links", "error", err)
		if err := e.medium.Remove(ctx, store.ScopeLocal, LinksKey); err != nil {
			e.logger.Warn("remove recent links", "error", err)
		}
		return []RecentLink{}
	}
	if err != nil {
		e.logger.Warn("load recent links", "error", err)
		return []RecentLink{}
	}

	valid := make([]RecentLink, 0, len(links))
	for _, l := range links {
		if validURL(l.URL) {
			valid = append(valid, l)
		}
	}
	return valid
}

// SaveLink moves rawURL to the front of the recent list, evicting the oldest
// entry when the list grows past capacity.
func (e *Engine) SaveLink(ctx context.Context, rawURL string) error {
	return e.saveLink(ctx, "storage.SaveLink", rawURL, "")
}

// SaveLinkWithTitle is SaveLink with a display title. An empty title keeps
// the one already stored for the URL.
func (e *Engine) SaveLinkWithTitle(ctx context.Context, rawURL, title string) error {
	return e.saveLink(ctx, "storage.SaveLinkWithTitle", rawURL, title)
}

func (e *Engine) saveLink(ctx context.Context, op, rawURL, title string) error {
	if !validURL(rawURL) {
		return errx.E(op, errx.Invalid, fmt.Errorf("not an absolute http(s) url: %q", rawURL))
	}
	if e.medium == nil {
		return errx.E(op, errx.Unavailable, errors.New("no persistent storage"))
	}

	links := e.RecentLinks(ctx)
	now := e.now()

	idx := -1
	for i, l := range links {
		if l.URL == rawURL {
			idx = i
			break
		}
	}

	entry := RecentLink{URL: rawURL, Timestamp: now, Title: title}
	if idx > -1 {
		if title == "" {
			entry.Title = links[idx].Title
		}
		links = append(links[:idx], links[idx+1:]...)
	}
	links = append([]RecentLink{entry}, links...)
	if len(links) > e.maxLinks {
		links = links[:e.maxLinks]
	}

	data, err := json.Marshal(StoredLinkCollection{Version: SchemaVersion, Links: links})
	if err != nil {
		return errx.E(op, errx.Internal, fmt.Errorf("encode links: %w", err))
	}
	if err := e.medium.Set(ctx, store.ScopeLocal, LinksKey, string(data)); err != nil {
		e.logger.Error("save link", "url", rawURL, "error", err)
		return errx.E(op, writeKind(err), err)
	}

	e.logger.Debug("link saved", "url", rawURL, "count", len(links))
	return nil
}

// ClearLinks deletes the stored collection.
func (e *Engine) ClearLinks(ctx context.Context) error {
	if e.medium == nil {
		return errx.E("storage.ClearLinks", errx.Unavailable, errors.New("no persistent storage"))
	}
	if err := e.medium.Remove(ctx, store.ScopeLocal, LinksKey); err != nil {
		return errx.E("storage.ClearLinks", errx.Internal, err)
	}
	return nil
}

// IsQuotaError reports whether a write failed because storage is full.
func IsQuotaError(err error) bool {
	return errx.KindOf(err) == errx.Quota
}

func writeKind(err error) errx.Kind {
	if store.IsFull(err) {
		return errx.Quota
	}
	return errx.Internal
}

func validURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
