package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps a local history of console calls.

// CallRecord is one completed call as shown by the history command.
type CallRecord struct {
	Call       string    `json:"call"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Failed reports whether the call ended in an error.
func (r CallRecord) Failed() bool { return r.Error != "" }

// Store persists call records.
type Store interface {
	Close() error
	Record(rec CallRecord) error
	// Recent returns up to limit unexpired records, newest first.
	Recent(limit int) ([]CallRecord, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Record(CallRecord) error          { return nil }
func (noopStore) Recent(int) ([]CallRecord, error) { return nil, nil }
