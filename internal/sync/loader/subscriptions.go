package loader

import (
	"context"
	"fmt"

	"github.com/vietddude/keapsync/internal/core/checkpoint"
	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/infra/storage"
)

// SubscriptionLoader loads recurring orders. The upstream exposes no per-id
// fetch and no since filter for subscriptions, so everything comes from the
// paginated list; LoadByID scans the list until it finds the target record.
type SubscriptionLoader struct {
	deps Deps
}

func NewSubscriptionLoader(deps Deps) *SubscriptionLoader { return &SubscriptionLoader{deps: deps} }

func (l *SubscriptionLoader) EntityType() domain.EntityType { return domain.EntitySubscriptions }
func (l *SubscriptionLoader) Paginated() bool               { return true }
func (l *SubscriptionLoader) SupportsSince() bool           { return false }

func (l *SubscriptionLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListSubscriptions(limit, offset, extra)
	if err != nil {
		return nil, nil, err
	}
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		rec := rec
		items = append(items, Item{ID: rec.ID, Persist: func(ctx context.Context) error {
			return l.persist(ctx, &rec)
		}})
	}
	return items, nextOffset(page), nil
}

// LoadByID pages through the subscription list looking for id. Expensive, but
// it only runs when the reprocessor backfills a missing subscription.
func (l *SubscriptionLoader) LoadByID(ctx context.Context, id int64) error {
	offset := 0
	for {
		var records []domain.Subscription
		var next *int
		err := l.deps.Retry.Do(ctx, fmt.Sprintf("scan subscriptions for %d", id), func() error {
			records2, page, ferr := l.listPage(offset)
			if ferr != nil {
				return ferr
			}
			records = records2
			next = nextOffset(page)
			return nil
		})
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.ID == id {
				rec := rec
				return l.persist(ctx, &rec)
			}
		}
		if next == nil {
			return fmt.Errorf("subscription %d: %w", id, storage.ErrNotFound)
		}
		offset = *next
	}
}

func (l *SubscriptionLoader) listPage(offset int) ([]domain.Subscription, keap.PageInfo, error) {
	limit := l.deps.BatchSize
	if limit <= 0 {
		limit = checkpoint.DefaultPageSize
	}
	return l.deps.Client.ListSubscriptions(limit, offset, nil)
}

func (l *SubscriptionLoader) persist(ctx context.Context, s *domain.Subscription) error {
	if err := l.deps.Store.UpsertSubscription(ctx, s); err != nil {
		return err
	}
	l.deps.Cache.MarkExists(ctx, domain.EntitySubscriptions, s.ID)
	return nil
}
