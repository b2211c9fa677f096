// Package errlog is the append-only ledger of failed units of work.
//
// Every per-item failure in the pipeline lands here as a structured record,
// partitioned into one JSON file per calendar day. The reprocessor mines
// these partitions for foreign-key-violation signatures after a full run.
// Writes never fail the caller: the ledger must not itself become a cause of
// pipeline failure.
package errlog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Record is one failed unit of work.
type Record struct {
	Timestamp    time.Time         `json:"timestamp"`
	EntityType   domain.EntityType `json:"entity_type"`
	EntityID     int64             `json:"entity_id"`
	ErrorType    string            `json:"error_type"`
	ErrorMessage string            `json:"error_message"`
	AdditionalData map[string]any  `json:"additional_data,omitempty"`
	StackTrace   string            `json:"stack_trace,omitempty"`
}

// Ledger appends error records to day-partitioned JSON files.
type Ledger struct {
	dir string
	now func() time.Time
}

// NewLedger creates the ledger directory if needed.
func NewLedger(dir string) *Ledger {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Failed to create error log directory", "dir", dir, "error", err)
	}
	return &Ledger{dir: dir, now: time.Now}
}

func (l *Ledger) partitionPath(t time.Time) string {
	return filepath.Join(l.dir, "load_errors_"+t.Format("20060102")+".json")
}

// LogError appends one record to the current day's partition, creating it if
// absent. Write failures are logged and swallowed.
func (l *Ledger) LogError(entityType domain.EntityType, entityID int64, errorType, message string, additional map[string]any) {
	l.LogErrorWithStack(entityType, entityID, errorType, message, additional, "")
}

// LogErrorWithStack is LogError with an attached stack/detail string, used
// for database errors whose FK-violation detail the reprocessor mines later.
func (l *Ledger) LogErrorWithStack(entityType domain.EntityType, entityID int64, errorType, message string, additional map[string]any, stack string) {
	rec := Record{
		Timestamp:      l.now().UTC(),
		EntityType:     entityType,
		EntityID:       entityID,
		ErrorType:      errorType,
		ErrorMessage:   message,
		AdditionalData: additional,
		StackTrace:     stack,
	}

	slog.Error("Recorded entity error",
		"entity_type", entityType, "entity_id", entityID, "error_type", errorType, "error", message)

	path := l.partitionPath(rec.Timestamp)
	records := readPartition(path)
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		slog.Error("Failed to encode error log entry", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("Failed to write error log file", "path", path, "error", err)
	}
}

// GetErrors reads the current day's partition, optionally filtered by entity
// type (empty matches all).
func (l *Ledger) GetErrors(entityType domain.EntityType) []Record {
	records := readPartition(l.partitionPath(l.now()))
	if entityType == "" {
		return records
	}
	var out []Record
	for _, r := range records {
		if r.EntityType == entityType {
			out = append(out, r)
		}
	}
	return out
}

// ReadAll returns the records of every partition in the ledger directory,
// oldest file first. Used by the reprocessor, which replays historical
// failures, not just today's.
func (l *Ledger) ReadAll() []Record {
	paths, err := filepath.Glob(filepath.Join(l.dir, "load_errors_*.json"))
	if err != nil {
		slog.Error("Failed to list error log partitions", "dir", l.dir, "error", err)
		return nil
	}
	var all []Record
	for _, p := range paths {
		all = append(all, readPartition(p)...)
	}
	return all
}

// readPartition treats missing or corrupt partitions as empty.
func readPartition(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read error log file", "path", path, "error", err)
		}
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Error reading existing error log file", "path", path, "error", err)
		return nil
	}
	return records
}
