package loader

import (
	"context"
	"fmt"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// ProductLoader loads products with their embedded subscription plans. The
// products endpoint does not honor a since filter, so every run walks the
// whole catalog.
type ProductLoader struct {
	deps Deps
}

func NewProductLoader(deps Deps) *ProductLoader { return &ProductLoader{deps: deps} }

func (l *ProductLoader) EntityType() domain.EntityType { return domain.EntityProducts }
func (l *ProductLoader) Paginated() bool               { return true }
func (l *ProductLoader) SupportsSince() bool           { return false }

func (l *ProductLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListProducts(limit, offset, extra)
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

func (l *ProductLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Product
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get product %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetProduct(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.persist(ctx, &rec)
}

func (l *ProductLoader) persist(ctx context.Context, p *domain.Product) error {
	if err := l.deps.Store.UpsertProduct(ctx, p); err != nil {
		return err
	}
	l.deps.Cache.MarkExists(ctx, domain.EntityProducts, p.ID)
	return nil
}
