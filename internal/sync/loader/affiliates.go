package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/infra/keap"
)

// AffiliateLoader loads affiliates with their commission payments and
// clawbacks. The order loader also calls LoadByID directly to backfill
// affiliates an order references before they appear in the paginated list.
type AffiliateLoader struct {
	deps Deps
}

func NewAffiliateLoader(deps Deps) *AffiliateLoader { return &AffiliateLoader{deps: deps} }

func (l *AffiliateLoader) EntityType() domain.EntityType { return domain.EntityAffiliates }
func (l *AffiliateLoader) Paginated() bool               { return true }
func (l *AffiliateLoader) SupportsSince() bool           { return false }

func (l *AffiliateLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListAffiliates(limit, offset, extra)
	if err != nil {
		return nil, nil, err
	}
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		id := rec.ID
		items = append(items, Item{ID: id, Persist: func(ctx context.Context) error {
			return l.LoadByID(ctx, id)
		}})
	}
	return items, nextOffset(page), nil
}

func (l *AffiliateLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Affiliate
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get affiliate %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetAffiliate(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.persist(ctx, &rec)
}

func (l *AffiliateLoader) persist(ctx context.Context, a *domain.Affiliate) error {
	var payments []domain.AffiliatePayment
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get affiliate %d payments", a.ID), func() error {
		var gerr error
		payments, gerr = l.deps.Client.GetAffiliatePayments(a.ID)
		return gerr
	})
	switch {
	case keap.IsQuotaExhausted(err):
		return err
	case err != nil:
		slog.Warn("Failed to fetch payments for affiliate", "affiliate_id", a.ID, "error", err)
	default:
		a.Payments = payments
	}

	var clawbacks []domain.AffiliateClawback
	err = l.deps.Retry.Do(ctx, fmt.Sprintf("get affiliate %d clawbacks", a.ID), func() error {
		var gerr error
		clawbacks, gerr = l.deps.Client.GetAffiliateClawbacks(a.ID)
		return gerr
	})
	switch {
	case keap.IsQuotaExhausted(err):
		return err
	case err != nil:
		slog.Warn("Failed to fetch clawbacks for affiliate", "affiliate_id", a.ID, "error", err)
	default:
		a.Clawbacks = clawbacks
	}

	if err := l.deps.Store.UpsertAffiliate(ctx, a); err != nil {
		return err
	}
	l.deps.Cache.MarkExists(ctx, domain.EntityAffiliates, a.ID)
	return nil
}
