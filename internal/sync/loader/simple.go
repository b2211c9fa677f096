package loader

import (
	"context"
	"fmt"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// The flat entity types (opportunities, tasks, notes, campaigns) share one
// shape: list a page of ids, re-fetch each record by id, upsert it, no
// sub-resource fetches. They differ only in endpoints and whether the list
// honors a since filter.

// OpportunityLoader loads sales opportunities.
type OpportunityLoader struct {
	deps Deps
}

func NewOpportunityLoader(deps Deps) *OpportunityLoader { return &OpportunityLoader{deps: deps} }

func (l *OpportunityLoader) EntityType() domain.EntityType { return domain.EntityOpportunities }
func (l *OpportunityLoader) Paginated() bool               { return true }
func (l *OpportunityLoader) SupportsSince() bool           { return true }

func (l *OpportunityLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListOpportunities(limit, offset, extra)
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

func (l *OpportunityLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Opportunity
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get opportunity %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetOpportunity(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.deps.Store.UpsertOpportunity(ctx, &rec)
}

// TaskLoader loads tasks.
type TaskLoader struct {
	deps Deps
}

func NewTaskLoader(deps Deps) *TaskLoader { return &TaskLoader{deps: deps} }

func (l *TaskLoader) EntityType() domain.EntityType { return domain.EntityTasks }
func (l *TaskLoader) Paginated() bool               { return true }
func (l *TaskLoader) SupportsSince() bool           { return true }

func (l *TaskLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListTasks(limit, offset, extra)
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

func (l *TaskLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Task
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get task %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetTask(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.deps.Store.UpsertTask(ctx, &rec)
}

// NoteLoader loads contact notes.
type NoteLoader struct {
	deps Deps
}

func NewNoteLoader(deps Deps) *NoteLoader { return &NoteLoader{deps: deps} }

func (l *NoteLoader) EntityType() domain.EntityType { return domain.EntityNotes }
func (l *NoteLoader) Paginated() bool               { return true }
func (l *NoteLoader) SupportsSince() bool           { return true }

func (l *NoteLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListNotes(limit, offset, extra)
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

func (l *NoteLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Note
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get note %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetNote(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.deps.Store.UpsertNote(ctx, &rec)
}

// CampaignLoader loads marketing campaigns. The campaigns endpoint does not
// honor a since filter.
type CampaignLoader struct {
	deps Deps
}

func NewCampaignLoader(deps Deps) *CampaignLoader { return &CampaignLoader{deps: deps} }

func (l *CampaignLoader) EntityType() domain.EntityType { return domain.EntityCampaigns }
func (l *CampaignLoader) Paginated() bool               { return true }
func (l *CampaignLoader) SupportsSince() bool           { return false }

func (l *CampaignLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListCampaigns(limit, offset, extra)
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

func (l *CampaignLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Campaign
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get campaign %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetCampaign(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.deps.Store.UpsertCampaign(ctx, &rec)
}
