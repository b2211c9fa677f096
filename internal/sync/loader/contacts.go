package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/infra/keap"
)

// ContactLoader loads contacts, enriching each with its stored credit cards
// and linking only tags that already exist locally. Tag links to unknown tags
// are dropped rather than allowed to break the contact write.
type ContactLoader struct {
	deps Deps
}

func NewContactLoader(deps Deps) *ContactLoader { return &ContactLoader{deps: deps} }

func (l *ContactLoader) EntityType() domain.EntityType { return domain.EntityContacts }
func (l *ContactLoader) Paginated() bool               { return true }
func (l *ContactLoader) SupportsSince() bool           { return true }

// FetchPage lists a page of contact ids. The list payload is a stub; each
// item re-fetches the full record by id before persisting.
func (l *ContactLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	records, page, err := l.deps.Client.ListContacts(limit, offset, extra)
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

func (l *ContactLoader) LoadByID(ctx context.Context, id int64) error {
	var rec domain.Contact
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get contact %d", id), func() error {
		var gerr error
		rec, gerr = l.deps.Client.GetContact(id)
		return gerr
	})
	if err != nil {
		return err
	}
	return l.persist(ctx, &rec)
}

func (l *ContactLoader) persist(ctx context.Context, c *domain.Contact) error {
	var cards []domain.CreditCard
	err := l.deps.Retry.Do(ctx, fmt.Sprintf("get contact %d credit cards", c.ID), func() error {
		var gerr error
		cards, gerr = l.deps.Client.GetContactCreditCards(c.ID)
		return gerr
	})
	switch {
	case keap.IsQuotaExhausted(err):
		return err
	case err != nil:
		// Cards are supplementary; the contact itself still loads.
		slog.Warn("Failed to fetch credit cards for contact", "contact_id", c.ID, "error", err)
	default:
		c.CreditCards = cards
	}

	if len(c.TagIDs) > 0 {
		existing, err := l.deps.Store.ExistingTagIDs(ctx, c.TagIDs)
		if err != nil {
			return err
		}
		if len(existing) < len(c.TagIDs) {
			slog.Debug("Dropping links to unknown tags",
				"contact_id", c.ID, "requested", len(c.TagIDs), "known", len(existing))
		}
		c.TagIDs = existing
	}

	if err := l.deps.Store.UpsertContact(ctx, c); err != nil {
		return err
	}
	l.deps.Cache.MarkExists(ctx, domain.EntityContacts, c.ID)
	return nil
}
