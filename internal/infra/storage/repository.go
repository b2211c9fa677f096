// Package storage defines the persistence contracts the loaders write
// through. The postgres subpackage is the production implementation; tests
// substitute in-memory fakes.
package storage

import (
	"context"
	"errors"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

// EntityStore persists CRM records. Upserts are idempotent: loading the same
// record twice converges on the same row, and owned collections are replaced
// wholesale rather than merged.
type EntityStore interface {
	UpsertContact(ctx context.Context, c *domain.Contact) error
	UpsertTag(ctx context.Context, t *domain.Tag) error
	UpsertProduct(ctx context.Context, p *domain.Product) error
	UpsertOrder(ctx context.Context, o *domain.Order) error
	UpsertAffiliate(ctx context.Context, a *domain.Affiliate) error
	UpsertOpportunity(ctx context.Context, o *domain.Opportunity) error
	UpsertTask(ctx context.Context, t *domain.Task) error
	UpsertNote(ctx context.Context, n *domain.Note) error
	UpsertCampaign(ctx context.Context, c *domain.Campaign) error
	UpsertSubscription(ctx context.Context, s *domain.Subscription) error
	UpsertCustomField(ctx context.Context, f *domain.CustomField) error

	// EnsurePaymentGateway inserts a gateway row if absent, leaving existing
	// rows untouched.
	EnsurePaymentGateway(ctx context.Context, g *domain.PaymentGateway) error

	// Exists reports whether an entity row is present. Used for
	// referential-integrity probes before dependent inserts.
	Exists(ctx context.Context, entityType domain.EntityType, id int64) (bool, error)

	// ExistingTagIDs filters ids down to the ones present in the tag table.
	ExistingTagIDs(ctx context.Context, ids []int64) ([]int64, error)
}
