// Package reprocess mines the error ledger for integrity failures, backfills
// the entities they point at, then replays the original failed records.
//
// A record that failed on a foreign key violation carries the server detail
// naming the missing key and target table. Loading that missing entity first
// usually lets the replay succeed, which is why backfills run in dependency
// order before any replays.
package reprocess

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/core/errlog"
	"github.com/vietddude/keapsync/internal/sync/loader"
	"github.com/vietddude/keapsync/internal/sync/metrics"
)

// fkDetailPattern matches the detail line PostgreSQL attaches to foreign key
// violations: Key (column)=(id) is not present in table "t".
var fkDetailPattern = regexp.MustCompile(`Key \((\w+)\)=\((\d+)\) is not present in table "(\w+)"`)

// replayableKinds are the ledger error classes worth replaying. Everything
// else (auth failures, validation errors) will fail identically on replay.
var replayableKinds = map[string]bool{
	"ForeignKeyViolation": true,
	"IntegrityError":      true,
}

// backfillOrder is the order missing dependencies are loaded in, parents
// before children.
var backfillOrder = []domain.EntityType{
	domain.EntityTags,
	domain.EntityProducts,
	domain.EntityContacts,
	domain.EntityAffiliates,
	domain.EntityOrders,
	domain.EntityOpportunities,
	domain.EntityTasks,
	domain.EntityNotes,
	domain.EntityCampaigns,
	domain.EntitySubscriptions,
}

// Stats summarizes one reprocessing pass.
type Stats struct {
	TotalErrors           int
	ProcessedErrors       int
	SuccessfulReprocesses int
	FailedReprocesses     int
	MissingDependencies   map[domain.EntityType][]int64
}

// LoaderSource resolves entity types to loaders. *loader.Registry satisfies
// it; tests substitute fakes.
type LoaderSource interface {
	Get(entityType domain.EntityType) (loader.EntityLoader, error)
}

// ItemRunner executes single-record loads. *loader.Runner satisfies it.
type ItemRunner interface {
	LoadOne(ctx context.Context, l loader.EntityLoader, id int64) error
}

// Reprocessor replays ledger failures after their dependencies are loaded.
type Reprocessor struct {
	ledger   *errlog.Ledger
	registry LoaderSource
	runner   ItemRunner
}

// New creates a reprocessor over the ledger and the loader registry.
func New(ledger *errlog.Ledger, registry LoaderSource, runner ItemRunner) *Reprocessor {
	return &Reprocessor{ledger: ledger, registry: registry, runner: runner}
}

// Run executes one full pass: mine every ledger partition, backfill missing
// dependencies in order, then replay the failed records.
func (r *Reprocessor) Run(ctx context.Context) (Stats, error) {
	records := r.ledger.ReadAll()
	stats := Stats{
		TotalErrors:         len(records),
		MissingDependencies: make(map[domain.EntityType][]int64),
	}

	var replayable []errlog.Record
	seen := make(map[domain.EntityType]map[int64]bool)
	for _, rec := range records {
		if !replayableKinds[rec.ErrorType] {
			continue
		}
		replayable = append(replayable, rec)

		depType, depID, ok := extractMissingDependency(rec)
		if !ok {
			continue
		}
		if seen[depType] == nil {
			seen[depType] = make(map[int64]bool)
		}
		if !seen[depType][depID] {
			seen[depType][depID] = true
			stats.MissingDependencies[depType] = append(stats.MissingDependencies[depType], depID)
		}
	}

	if len(replayable) == 0 {
		slog.Info("No replayable errors in ledger", "total_errors", stats.TotalErrors)
		return stats, nil
	}

	slog.Info("Reprocessing ledger errors",
		"total_errors", stats.TotalErrors, "replayable", len(replayable))

	for _, et := range backfillOrder {
		ids := stats.MissingDependencies[et]
		if len(ids) == 0 {
			continue
		}
		l, err := r.registry.Get(et)
		if err != nil {
			slog.Warn("No loader for missing dependency type", "entity_type", et)
			continue
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			slog.Info("Backfilling missing dependency", "entity_type", et, "entity_id", id)
			if err := r.runner.LoadOne(ctx, l, id); err != nil {
				slog.Warn("Failed to backfill dependency",
					"entity_type", et, "entity_id", id, "error", err)
			}
		}
	}

	for _, rec := range replayable {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.ProcessedErrors++

		l, err := r.registry.Get(rec.EntityType)
		if err != nil {
			stats.FailedReprocesses++
			continue
		}
		if err := r.runner.LoadOne(ctx, l, rec.EntityID); err != nil {
			metrics.ReprocessedTotal.WithLabelValues(string(rec.EntityType), "failure").Inc()
			slog.Warn("Replay failed",
				"entity_type", rec.EntityType, "entity_id", rec.EntityID, "error", err)
			stats.FailedReprocesses++
			continue
		}
		metrics.ReprocessedTotal.WithLabelValues(string(rec.EntityType), "success").Inc()
		stats.SuccessfulReprocesses++
	}

	slog.Info("Reprocessing complete",
		"processed", stats.ProcessedErrors,
		"succeeded", stats.SuccessfulReprocesses,
		"failed", stats.FailedReprocesses)
	return stats, nil
}

// extractMissingDependency pulls the missing (entity type, id) out of a
// foreign-key-violation record. The detail may sit in the stack trace or the
// error message depending on how the failure was logged.
func extractMissingDependency(rec errlog.Record) (domain.EntityType, int64, bool) {
	for _, text := range []string{rec.StackTrace, rec.ErrorMessage} {
		m := fkDetailPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		et, ok := domain.TableToEntityType[m[3]]
		if !ok {
			slog.Debug("Foreign key violation references unmapped table",
				"table", m[3], "column", m[1])
			return "", 0, false
		}
		return et, id, true
	}
	return "", 0, false
}
