package loader

import (
	"context"
	"fmt"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// TagLoader loads tags. The embedded category travels with each tag and the
// store writes it first, so category references never dangle.
type TagLoader struct {
	deps Deps
}

func NewTagLoader(deps Deps) *TagLoader { return &TagLoader{deps: deps} }

func (l *TagLoader) EntityType() domain.EntityType { return domain.EntityTags }
func (l *TagLoader) Paginated() bool               { return true }
func (l *TagLoader) SupportsSince() bool           { return false }

func (l *TagLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListTags(limit, offset, extra)
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

func (l *TagLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Tag
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get tag %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetTag(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.persist(ctx, &rec)
}

func (l *TagLoader) persist(ctx context.Context, t *domain.Tag) error {
	if err := l.deps.Store.UpsertTag(ctx, t); err != nil {
		return err
	}
	l.deps.Cache.MarkExists(ctx, domain.EntityTags, t.ID)
	return nil
}
