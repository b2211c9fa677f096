package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/infra/keap"
)

// OrderLoader loads orders. Orders are the most dependency-heavy type: the
// payment plan may reference a payment gateway the store has never seen, and
// the affiliate ids may point at affiliates not yet loaded. Both are ensured
// before the order row is written.
type OrderLoader struct {
	deps       Deps
	affiliates *AffiliateLoader
}

func NewOrderLoader(deps Deps, affiliates *AffiliateLoader) *OrderLoader {
	return &OrderLoader{deps: deps, affiliates: affiliates}
}

func (l *OrderLoader) EntityType() domain.EntityType { return domain.EntityOrders }
func (l *OrderLoader) Paginated() bool               { return true }
func (l *OrderLoader) SupportsSince() bool           { return true }

func (l *OrderLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListOrders(limit, offset, extra)
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

func (l *OrderLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Order
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get order %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetOrder(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.persist(ctx, &rec)
}

func (l *OrderLoader) persist(ctx context.Context, o *domain.Order) error {
	// Gateway first: the payment plan row references it.
	if pp := o.PaymentPlan; pp != nil && pp.MerchantAccountID != 0 {
		gw := &domain.PaymentGateway{
			ID:       pp.MerchantAccountID,
			Name:     pp.MerchantAccountName,
			Type:     "Unknown",
			IsActive: true,
		}
		if err := l.deps.Store.EnsurePaymentGateway(ctx, gw); err != nil {
			return err
		}
	}

	var payments []domain.OrderPayment
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get order %d payments", o.ID), func() error {
		var gerr error
		payments, gerr = l.deps.Client.GetOrderPayments(o.ID)
		return gerr
	})
	switch {
	case keap.IsQuotaExhausted(err):
		return err
	case err != nil:
		slog.Warn("Failed to fetch payments for order", "order_id", o.ID, "error", err)
	default:
		o.Payments = payments
	}

	var transactions []domain.OrderTransaction
	err = l.deps.Retry.Do(ctx, fmt.Sprintf("get order %d transactions", o.ID), func() error {
		var gerr error
		transactions, gerr = l.deps.Client.GetOrderTransactions(o.ID)
		return gerr
	})
	switch {
	case keap.IsQuotaExhausted(err):
		return err
	case err != nil:
		slog.Warn("Failed to fetch transactions for order", "order_id", o.ID, "error", err)
	default:
		o.Transactions = transactions
	}

	if err := l.ensureAffiliate(ctx, o, &o.LeadAffiliateID); err != nil {
		return err
	}
	if err := l.ensureAffiliate(ctx, o, &o.SalesAffiliateID); err != nil {
		return err
	}

	if err := l.deps.Store.UpsertOrder(ctx, o); err != nil {
		return err
	}
	l.deps.Cache.MarkExists(ctx, domain.EntityOrders, o.ID)
	return nil
}

// ensureAffiliate makes sure a referenced affiliate row exists, loading it on
// demand. A reference that cannot be satisfied is cleared instead of letting
// the order insert fail on the foreign key.
func (l *OrderLoader) ensureAffiliate(ctx context.Context, o *domain.Order, ref **int64) error {
	if *ref == nil {
		return nil
	}
	id := **ref

	if l.deps.Cache.Known(ctx, domain.EntityAffiliates, id) {
		return nil
	}
	exists, err := l.deps.Store.Exists(ctx, domain.EntityAffiliates, id)
	if err != nil {
		return err
	}
	if exists {
		l.deps.Cache.MarkExists(ctx, domain.EntityAffiliates, id)
		return nil
	}

	if err := l.affiliates.LoadByID(ctx, id); err != nil {
		if keap.IsQuotaExhausted(err) {
			return err
		}
		slog.Warn("Clearing unresolvable affiliate reference on order",
			"order_id", o.ID, "affiliate_id", id, "error", err)
		*ref = nil
		return nil
	}
	return nil
}
