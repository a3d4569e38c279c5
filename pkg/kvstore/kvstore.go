// Package kvstore persists the hub's collections as JSON blobs under fixed keys.
//
// The hub treats the store as a cache of its own state: reads tolerate missing
// or corrupt entries by falling back to a caller-supplied value, and writes are
// whole-value replacements. No schema versioning is applied to stored blobs.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get when the key has never been written.
var ErrNotFound = errors.New("kvstore: key not found")

// ErrMalformed wraps errors from Decode when the stored bytes are not valid JSON for T.
var ErrMalformed = errors.New("kvstore: malformed value")

// Keys of the persisted collections.
const (
	KeyCompetitors      = "competitors"
	KeyFindings         = "findings"
	KeyReports          = "reports"
	KeyDiscoveryHistory = "discovery_history"
	KeyLatestExportURL  = "latest_export_url"
)

// AllKeys lists every key the hub writes, in load order.
var AllKeys = []string{
	KeyCompetitors,
	KeyFindings,
	KeyReports,
	KeyDiscoveryHistory,
	KeyLatestExportURL,
}

// Store is a durable byte-valued key-value store.
type Store interface {
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Decode reads key and JSON-decodes it into a T.
func Decode[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w: %w", key, ErrMalformed, err)
	}
	return v, nil
}

// Read returns the decoded value of key, or fallback when the key is absent,
// unreadable or not valid JSON for T. It never fails.
func Read[T any](ctx context.Context, s Store, key string, fallback T) T {
	v, err := Decode[T](ctx, s, key)
	if err != nil {
		return fallback
	}
	return v
}

// Write JSON-encodes v and stores it under key.
func Write(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix namespaces every key of s with prefix.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}
