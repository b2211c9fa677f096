// Package loader drives the checkpoint-aware extraction of each entity type:
// page through the upstream list endpoint, re-fetch each listed record by id,
// persist it, checkpoint after each page, and isolate per-record failures
// into the error ledger so a bad record never stops a run.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/keapsync/internal/core/checkpoint"
	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/core/errlog"
	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/infra/rediscache"
	"github.com/vietddude/keapsync/internal/infra/storage"
	"github.com/vietddude/keapsync/internal/infra/storage/postgres"
	"github.com/vietddude/keapsync/internal/sync/metrics"
	"github.com/vietddude/keapsync/internal/sync/retry"
)

// Item is one record of a fetched page: its upstream id plus the closure that
// enriches and persists it. The closure owns any sub-resource fetches.
type Item struct {
	ID      int64
	Persist func(ctx context.Context) error
}

// EntityLoader is the per-entity-type strategy the runner drives.
type EntityLoader interface {
	EntityType() domain.EntityType

	// Paginated reports whether the upstream list endpoint pages. The one
	// non-paginated type (custom fields) is fetched whole in a single pass.
	Paginated() bool

	// SupportsSince reports whether the list endpoint honors a since filter.
	SupportsSince() bool

	// FetchPage fetches one page of items. next is nil on the last page.
	FetchPage(ctx context.Context, limit, offset int, extra map[string]string) (items []Item, next *int, err error)

	// LoadByID fetches and persists a single record.
	LoadByID(ctx context.Context, id int64) error
}

// Deps bundles the shared collaborators every loader needs.
type Deps struct {
	Client      *keap.Client
	Store       storage.EntityStore
	Cache       *rediscache.Cache
	Retry       *retry.Policy
	Ledger      *errlog.Ledger
	Checkpoints *checkpoint.Store
	BatchSize   int
}

func (d Deps) batchSize() int {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	return checkpoint.DefaultPageSize
}

// Runner executes loaders against the checkpoint store and error ledger.
type Runner struct {
	deps Deps
}

// NewRunner creates a runner over the shared dependencies.
func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// LoadAll pulls every record of one entity type, resuming from the last
// checkpoint. With update set, types that support it restart pagination from
// offset zero, filtered to records changed since the last completed traversal
// when one exists. Per-record failures, quota exhaustion included, land in
// the ledger and the run continues; a page-level failure aborts with the
// checkpoint intact.
func (r *Runner) LoadAll(ctx context.Context, l EntityLoader, update bool) (domain.LoadResult, error) {
	et := l.EntityType()
	cps := r.deps.Checkpoints

	incremental := update && l.SupportsSince()
	extra := cps.QueryParams(et, incremental)

	var result domain.LoadResult
	records, offset := 0, 0
	if incremental {
		// An update traversal walks a different result set, so the stored
		// offset does not apply even when no prior completion exists yet.
		slog.Info("Starting incremental load", "entity_type", et, "since", extra["since"])
	} else {
		records = cps.Get(et)
		offset = cps.GetAPIOffset(et)
		if offset > 0 {
			slog.Info("Resuming from checkpoint", "entity_type", et,
				"records_processed", records, "api_offset", offset)
		}
	}

	if !l.Paginated() {
		return r.loadUnpaginated(ctx, l)
	}

	for {
		start := time.Now()
		var items []Item
		var next *int
		err := r.deps.Retry.Do(ctx, fmt.Sprintf("list %s", et), func() error {
			metrics.APICallsTotal.WithLabelValues(string(et)).Inc()
			var ferr error
			items, next, ferr = l.FetchPage(ctx, r.deps.batchSize(), offset, extra)
			return ferr
		})
		if err != nil {
			metrics.APIErrorsTotal.WithLabelValues(string(et), keap.ErrorKind(err)).Inc()
			return result, fmt.Errorf("failed to fetch %s page at offset %d: %w", et, offset, err)
		}

		if len(items) == 0 {
			if err := cps.Save(et, records, offset, true); err != nil {
				return result, err
			}
			slog.Info("Completed load", "entity_type", et, "records_processed", records)
			break
		}

		for _, item := range items {
			if err := r.processItem(ctx, et, item); err != nil {
				result.FailedCount++
			} else {
				result.SuccessCount++
			}
			result.TotalRecords++
		}
		records += len(items)

		metrics.PageLatency.WithLabelValues(string(et)).Observe(time.Since(start).Seconds())

		if next == nil {
			if err := cps.Save(et, records, offset, true); err != nil {
				return result, err
			}
			slog.Info("Completed load", "entity_type", et, "records_processed", records)
			break
		}
		offset = *next
		if err := cps.Save(et, records, offset, false); err != nil {
			return result, err
		}
		metrics.CheckpointOffset.WithLabelValues(string(et)).Set(float64(offset))
	}

	return result, nil
}

// loadUnpaginated fetches the whole result set in one pass and checkpoints a
// single completion.
func (r *Runner) loadUnpaginated(ctx context.Context, l EntityLoader) (domain.LoadResult, error) {
	et := l.EntityType()

	var result domain.LoadResult
	var items []Item
	err := r.deps.Retry.Do(ctx, fmt.Sprintf("fetch %s", et), func() error {
		metrics.APICallsTotal.WithLabelValues(string(et)).Inc()
		var ferr error
		items, _, ferr = l.FetchPage(ctx, 0, 0, nil)
		return ferr
	})
	if err != nil {
		metrics.APIErrorsTotal.WithLabelValues(string(et), keap.ErrorKind(err)).Inc()
		return result, fmt.Errorf("failed to fetch %s: %w", et, err)
	}

	for _, item := range items {
		if err := r.processItem(ctx, et, item); err != nil {
			result.FailedCount++
		} else {
			result.SuccessCount++
		}
		result.TotalRecords++
	}

	if err := r.deps.Checkpoints.Save(et, result.TotalRecords, 0, true); err != nil {
		return result, err
	}
	slog.Info("Completed load", "entity_type", et, "records_processed", result.TotalRecords)
	return result, nil
}

// LoadOne fetches and persists a single record by id, recording a failure in
// the ledger the same way a full run would.
func (r *Runner) LoadOne(ctx context.Context, l EntityLoader, id int64) error {
	return r.processItem(ctx, l.EntityType(), Item{
		ID:      id,
		Persist: func(ctx context.Context) error { return l.LoadByID(ctx, id) },
	})
}

// processItem runs one item's persist closure, translating failures into
// ledger records. Quota exhaustion fails the item like any other error; only
// that item is skipped, the batch continues.
func (r *Runner) processItem(ctx context.Context, et domain.EntityType, item Item) error {
	err := item.Persist(ctx)
	if err == nil {
		metrics.RecordsProcessed.WithLabelValues(string(et), "success").Inc()
		return nil
	}

	metrics.RecordsProcessed.WithLabelValues(string(et), "failure").Inc()
	kind, detail := classifyError(err)
	r.deps.Ledger.LogErrorWithStack(et, item.ID, kind, err.Error(), nil, detail)
	return err
}

// classifyError names the error class for the ledger. Database integrity
// violations carry the server detail so the reprocessor can mine foreign key
// references out of them.
func classifyError(err error) (kind, detail string) {
	if postgres.IsIntegrityViolation(err) {
		return postgres.ErrorKind(err), postgres.ErrorDetail(err)
	}
	return keap.ErrorKind(err), ""
}

// nextOffset lifts the next-page offset out of a pagination envelope.
func nextOffset(page keap.PageInfo) *int {
	return keap.ParseNextOffset(page.Next)
}
