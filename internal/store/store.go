// Package store persists workflow records between API calls: a record
// holds the document state plus housekeeping fields, keyed by request ID.
// Two backends are provided, a JSON directory store and a SQLite store.
package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"git.home.luguber.info/inful/docgen/internal/document"
)

// ErrNotFound is returned when no record exists for an ID.
var ErrNotFound = errors.New("record not found")

// Record is one persisted workflow request.
type Record struct {
	ID    string          `json:"id"`
	State *document.State `json:"state"`

	// NeedsContentUpdate marks records whose title or outline was edited
	// after content generation, making the stored content stale.
	NeedsContentUpdate bool `json:"needs_content_update"`

	// FilePath points at the last rendered artifact, if any.
	FilePath string `json:"file_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the persistence interface shared by both backends.
type Store interface {
	// Put inserts or replaces a record and stamps UpdatedAt.
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	// List returns all records, newest first.
	List(ctx context.Context) ([]*Record, error)
	// ListStale returns records not updated since the cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]*Record, error)
	Close() error
}

// Record IDs are caller-supplied and end up in filenames, so the charset
// is restricted.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether an ID is safe to use as a storage key.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

var errInvalidID = errors.New("invalid record id")
