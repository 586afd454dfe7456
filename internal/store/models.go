package store

import "time"

// Scope selects which key space a value lives in.
type Scope string

const (
	// ScopeLocal values survive across runs.
	ScopeLocal Scope = "local"
	// ScopeSession values belong to one session ID and are purged with it.
	ScopeSession Scope = "session"
)

type Entry struct {
	Scope     Scope     `json:"scope"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
