package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// JSONStore persists one JSON file per record under a data directory.
// Writes go through a temp file and rename, so a crash never leaves a
// half-written record behind.
type JSONStore struct {
	dataDir string
	mu      sync.RWMutex
}

// NewJSONStore creates the data directory if needed.
func NewJSONStore(dataDir string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}
	return &JSONStore{dataDir: dataDir}, nil
}

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.dataDir, id+".json")
}

func (s *JSONStore) Put(_ context.Context, rec *Record) error {
	if !ValidID(rec.ID) {
		return errInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", rec.ID, err)
	}

	target := s.path(rec.ID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("committing record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *JSONStore) Get(_ context.Context, id string) (*Record, error) {
	if !ValidID(id) {
		return nil, errInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *JSONStore) read(id string) (*Record, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *JSONStore) Delete(_ context.Context, id string) error {
	if !ValidID(id) {
		return errInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

func (s *JSONStore) List(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}

	var out []*Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if !ValidID(id) {
			continue
		}
		rec, err := s.read(id)
		if err != nil {
			// Skip corrupt files rather than failing the whole listing.
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *JSONStore) ListStale(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var stale []*Record
	for _, rec := range all {
		if rec.UpdatedAt.Before(cutoff) {
			stale = append(stale, rec)
		}
	}
	return stale, nil
}

func (s *JSONStore) Close() error { return nil }
