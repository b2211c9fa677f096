package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Store persists checkpoints to a JSON file, one entry per entity type.
type Store struct {
	path        string
	checkpoints map[domain.EntityType]*Checkpoint
	now         func() time.Time
}

// NewStore loads existing checkpoints from path, treating a missing or
// corrupt file as empty.
func NewStore(path string) *Store {
	s := &Store{
		path:        path,
		checkpoints: make(map[domain.EntityType]*Checkpoint),
		now:         time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read checkpoint file, starting fresh", "path", s.path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &s.checkpoints); err != nil {
		slog.Warn("Invalid checkpoint file, starting fresh", "path", s.path, "error", err)
		s.checkpoints = make(map[domain.EntityType]*Checkpoint)
	}
}

// Get returns the number of records processed for an entity type, or 0.
func (s *Store) Get(entityType domain.EntityType) int {
	if cp, ok := s.checkpoints[entityType]; ok {
		return cp.RecordsProcessed
	}
	return 0
}

// GetAPIOffset returns the stored upstream pagination offset for an entity
// type. Legacy entries written without an explicit offset fall back to the
// record count rounded down to the default page size.
func (s *Store) GetAPIOffset(entityType domain.EntityType) int {
	cp, ok := s.checkpoints[entityType]
	if !ok {
		return 0
	}
	if cp.APIOffset > 0 || cp.RecordsProcessed == 0 {
		return cp.APIOffset
	}
	derived := (cp.RecordsProcessed / DefaultPageSize) * DefaultPageSize
	slog.Debug("Checkpoint has no explicit api_offset, deriving from record count",
		"entity_type", entityType, "derived_offset", derived)
	return derived
}

// GetLastCompleted returns the completion timestamp of the last full
// traversal, or nil if the type has never completed.
func (s *Store) GetLastCompleted(entityType domain.EntityType) *time.Time {
	if cp, ok := s.checkpoints[entityType]; ok {
		return cp.LastCompleted
	}
	return nil
}

// Save persists a checkpoint for an entity type. The completion timestamp is
// stamped only when completed is true; it is never cleared by an ordinary
// page save.
func (s *Store) Save(entityType domain.EntityType, recordsProcessed, apiOffset int, completed bool) error {
	cp, ok := s.checkpoints[entityType]
	if !ok {
		cp = &Checkpoint{}
		s.checkpoints[entityType] = cp
	}
	cp.RecordsProcessed = recordsProcessed
	cp.APIOffset = apiOffset
	if completed {
		now := s.now().UTC()
		cp.LastCompleted = &now
	}

	if err := s.flush(); err != nil {
		return fmt.Errorf("failed to save checkpoint for %s: %w", entityType, err)
	}
	slog.Debug("Saved checkpoint", "entity_type", entityType,
		"records_processed", recordsProcessed, "api_offset", apiOffset, "completed", completed)
	return nil
}

// ClearAll wipes all checkpoints, forcing the next run to be a full reload.
func (s *Store) ClearAll() error {
	s.checkpoints = make(map[domain.EntityType]*Checkpoint)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	slog.Debug("Cleared all checkpoints")
	return nil
}

// QueryParams returns the incremental-load query parameters for an entity
// type: {"since": <last completed>} when update is true and a prior
// completion timestamp exists, otherwise empty.
func (s *Store) QueryParams(entityType domain.EntityType, update bool) map[string]string {
	params := make(map[string]string)
	if update {
		if last := s.GetLastCompleted(entityType); last != nil {
			params["since"] = last.Format(time.RFC3339)
		}
	}
	return params
}

// All returns a copy of every stored checkpoint, keyed by entity type.
func (s *Store) All() map[domain.EntityType]Checkpoint {
	out := make(map[domain.EntityType]Checkpoint, len(s.checkpoints))
	for k, v := range s.checkpoints {
		out[k] = *v
	}
	return out
}

// flush writes the whole checkpoint map to a temp file and renames it into
// place. Rename is atomic on POSIX filesystems, so readers never observe a
// partially written file.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.checkpoints, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
