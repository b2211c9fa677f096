// Package pipeline orchestrates full and targeted extraction runs across all
// entity types in dependency order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/sync/loader"
	"github.com/vietddude/keapsync/internal/sync/reprocess"
)

// Summary is the outcome of one pipeline run.
type Summary struct {
	RunID    string
	Duration time.Duration
	Results  map[domain.EntityType]domain.LoadResult
	Failed   []domain.EntityType
	Reproc   *reprocess.Stats
}

// LoaderSource resolves entity types to loaders. *loader.Registry satisfies
// it; tests substitute fakes.
type LoaderSource interface {
	Get(entityType domain.EntityType) (loader.EntityLoader, error)
}

// Runner executes loads. *loader.Runner satisfies it.
type Runner interface {
	LoadAll(ctx context.Context, l loader.EntityLoader, update bool) (domain.LoadResult, error)
	LoadOne(ctx context.Context, l loader.EntityLoader, id int64) error
}

// Reprocessor replays ledger errors. *reprocess.Reprocessor satisfies it.
type Reprocessor interface {
	Run(ctx context.Context) (reprocess.Stats, error)
}

// Pipeline runs loaders in dependency order and triggers reprocessing after
// full runs.
type Pipeline struct {
	registry    LoaderSource
	runner      Runner
	reprocessor Reprocessor
}

// New creates a pipeline. The reprocessor may be nil to disable the
// post-run dependency replay.
func New(registry LoaderSource, runner Runner, reprocessor Reprocessor) *Pipeline {
	return &Pipeline{registry: registry, runner: runner, reprocessor: reprocessor}
}

// RunAll loads every entity type in dependency order. A failing type is
// logged and the run moves on to the next type, so every type gets an
// attempt. After the pass, ledger errors are reprocessed.
func (p *Pipeline) RunAll(ctx context.Context, update bool) (Summary, error) {
	summary := Summary{
		RunID:   uuid.NewString(),
		Results: make(map[domain.EntityType]domain.LoadResult),
	}
	start := time.Now()
	slog.Info("Starting data load", "run_id", summary.RunID, "update", update)

	for _, et := range domain.LoadOrder {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}

		l, err := p.registry.Get(et)
		if err != nil {
			summary.Failed = append(summary.Failed, et)
			slog.Error("Skipping entity type", "entity_type", et, "error", err)
			continue
		}

		slog.Info("Loading entity type", "entity_type", et)
		result, err := p.runner.LoadAll(ctx, l, update)
		summary.Results[et] = result
		if err != nil {
			summary.Failed = append(summary.Failed, et)
			if ctx.Err() != nil {
				summary.Duration = time.Since(start)
				return summary, fmt.Errorf("load aborted at %s: %w", et, err)
			}
			slog.Error("Entity type load failed, continuing",
				"entity_type", et, "error", err)
			continue
		}
		slog.Info("Entity type loaded", "entity_type", et,
			"total", result.TotalRecords, "success", result.SuccessCount, "failed", result.FailedCount)
	}

	if p.reprocessor != nil {
		stats, err := p.reprocessor.Run(ctx)
		if err != nil {
			slog.Error("Reprocessing pass failed", "error", err)
		} else {
			summary.Reproc = &stats
		}
	}

	summary.Duration = time.Since(start)
	p.logSummary(summary)
	return summary, nil
}

// RunOne loads a single entity type, or a single record of it when id is
// non-zero. Targeted runs skip the reprocessing pass.
func (p *Pipeline) RunOne(ctx context.Context, entityType domain.EntityType, id int64, update bool) (Summary, error) {
	summary := Summary{
		RunID:   uuid.NewString(),
		Results: make(map[domain.EntityType]domain.LoadResult),
	}
	start := time.Now()

	l, err := p.registry.Get(entityType)
	if err != nil {
		return summary, err
	}

	if id != 0 {
		slog.Info("Loading single record", "run_id", summary.RunID,
			"entity_type", entityType, "entity_id", id)
		err := p.runner.LoadOne(ctx, l, id)
		result := domain.LoadResult{TotalRecords: 1}
		if err != nil {
			result.FailedCount = 1
			summary.Failed = append(summary.Failed, entityType)
		} else {
			result.SuccessCount = 1
		}
		summary.Results[entityType] = result
		summary.Duration = time.Since(start)
		return summary, err
	}

	slog.Info("Loading entity type", "run_id", summary.RunID, "entity_type", entityType)
	result, err := p.runner.LoadAll(ctx, l, update)
	summary.Results[entityType] = result
	if err != nil {
		summary.Failed = append(summary.Failed, entityType)
	}
	summary.Duration = time.Since(start)
	p.logSummary(summary)
	return summary, err
}

func (p *Pipeline) logSummary(s Summary) {
	var agg domain.LoadResult
	for _, r := range s.Results {
		agg.Add(r)
	}
	slog.Info("Run finished",
		"run_id", s.RunID,
		"duration", s.Duration.Round(time.Millisecond),
		"entity_types", len(s.Results),
		"records", agg.TotalRecords, "success", agg.SuccessCount, "failed", agg.FailedCount,
		"failed_types", len(s.Failed))
}
