package loader

import (
	"fmt"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Registry holds one loader per entity type, wired over shared dependencies.
type Registry struct {
	loaders map[domain.EntityType]EntityLoader
}

// NewRegistry builds every loader. The order loader gets the affiliate loader
// so it can backfill affiliate references on demand.
func NewRegistry(deps Deps) *Registry {
	affiliates := NewAffiliateLoader(deps)

	loaders := map[domain.EntityType]EntityLoader{
		domain.EntityCustomFields:  NewCustomFieldLoader(deps),
		domain.EntityTags:          NewTagLoader(deps),
		domain.EntityProducts:      NewProductLoader(deps),
		domain.EntityContacts:      NewContactLoader(deps),
		domain.EntityOpportunities: NewOpportunityLoader(deps),
		domain.EntityAffiliates:    affiliates,
		domain.EntityOrders:        NewOrderLoader(deps, affiliates),
		domain.EntityTasks:         NewTaskLoader(deps),
		domain.EntityNotes:         NewNoteLoader(deps),
		domain.EntityCampaigns:     NewCampaignLoader(deps),
		domain.EntitySubscriptions: NewSubscriptionLoader(deps),
	}
	return &Registry{loaders: loaders}
}

// Get returns the loader for an entity type.
func (r *Registry) Get(entityType domain.EntityType) (EntityLoader, error) {
	l, ok := r.loaders[entityType]
	if !ok {
		return nil, fmt.Errorf("no loader for entity type %q", entityType)
	}
	return l, nil
}
