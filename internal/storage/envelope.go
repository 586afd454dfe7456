package storage

import (
	"encoding/json"
	"fmt"
)

// versionProbe reads only the tag of a persisted envelope. Link collections
// tag with "version", snapshots with "v".
type versionProbe struct {
	Version *int `json:"version"`
	V       *int `json:"v"`
}

// errUnknownVersion marks a well-formed envelope whose tag has no decoder.
type errUnknownVersion struct {
	got int
}

func (e errUnknownVersion) Error() string {
	return fmt.Sprintf("schema version mismatch (expected %d, got %d)", SchemaVersion, e.got)
}

// decodeTagged reads the version tag from data and hands data to the decoder
// registered for it. Missing tags and tags without a decoder are rejected.
func decodeTagged[T any](data []byte, decoders map[int]func([]byte) (T, error)) (T, error) {
	var zero T
	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return zero, fmt.Errorf("parse envelope: %w", err)
	}

	tag := probe.Version
	if tag == nil {
		tag = probe.V
	}
	if tag == nil {
		return zero, errUnknownVersion{got: 0}
	}

	dec, ok := decoders[*tag]
	if !ok {
		return zero, errUnknownVersion{got: *tag}
	}
	return dec(data)
}
