package loader

import (
	"context"
	"fmt"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/infra/storage"
)

// CustomFieldLoader loads custom field definitions. Definitions hang off
// parent models rather than a list endpoint: one unpaginated fetch per model
// in keap.CustomFieldModels, flattened into a single pass.
type CustomFieldLoader struct {
	deps Deps
}

func NewCustomFieldLoader(deps Deps) *CustomFieldLoader { return &CustomFieldLoader{deps: deps} }

func (l *CustomFieldLoader) EntityType() domain.EntityType { return domain.EntityCustomFields }
func (l *CustomFieldLoader) Paginated() bool               { return false }
func (l *CustomFieldLoader) SupportsSince() bool           { return false }

func (l *CustomFieldLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	var items []Item
	for _, model := range keap.CustomFieldModels {
		model := model
		var fields []domain.CustomField
		err := l.deps.Retry.Do(ctx, fmt.Sprintf("get %s custom fields", model), func() error {
			var gerr error
			fields, gerr = l.deps.Client.GetCustomFields(model)
			return gerr
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch custom fields for %s: %w", model, err)
		}
		for _, f := range fields {
			f := f
			items = append(items, Item{ID: f.ID, Persist: func(ctx context.Context) error {
				return l.deps.Store.UpsertCustomField(ctx, &f)
			}})
		}
	}
	return items, nil, nil
}

// LoadByID refetches every model's definitions and persists the matching one.
// There is no per-id endpoint for field definitions.
func (l *CustomFieldLoader) LoadByID(ctx context.Context, id int64) error {
	for _, model := range keap.CustomFieldModels {
		var fields []domain.CustomField
		err := l.deps.Retry.Do(ctx, fmt.Sprintf("get %s custom fields", model), func() error {
			var gerr error
			fields, gerr = l.deps.Client.GetCustomFields(model)
			return gerr
		})
		if err != nil {
			return err
		}
		for _, f := range fields {
			if f.ID == id {
				f := f
				return l.deps.Store.UpsertCustomField(ctx, &f)
			}
		}
	}
	return fmt.Errorf("custom field %d: %w", id, storage.ErrNotFound)
}
