package domain

// EntityType identifies one kind of CRM record handled by the pipeline.
type EntityType string

const (
	EntityCustomFields  EntityType = "custom_fields"
	EntityTags          EntityType = "tags"
	EntityProducts      EntityType = "products"
	EntityContacts      EntityType = "contacts"
	EntityOpportunities EntityType = "opportunities"
	EntityAffiliates    EntityType = "affiliates"
	EntityOrders        EntityType = "orders"
	EntityTasks         EntityType = "tasks"
	EntityNotes         EntityType = "notes"
	EntityCampaigns     EntityType = "campaigns"
	EntitySubscriptions EntityType = "subscriptions"
)

// LoadOrder is the fixed order entity types are loaded in. It reflects the
// foreign-key dependencies between tables: anything referenced by a later
// type appears before it.
var LoadOrder = []EntityType{
	EntityCustomFields,
	EntityTags,
	EntityProducts,
	EntityContacts,
	EntityOpportunities,
	EntityAffiliates,
	EntityOrders,
	EntityTasks,
	EntityNotes,
	EntityCampaigns,
	EntitySubscriptions,
}

// TableToEntityType maps database table names back to entity types. Used by
// the reprocessor when mining foreign-key violations out of the error ledger.
var TableToEntityType = map[string]EntityType{
	"contacts":      EntityContacts,
	"products":      EntityProducts,
	"affiliates":    EntityAffiliates,
	"orders":        EntityOrders,
	"opportunities": EntityOpportunities,
	"tasks":         EntityTasks,
	"notes":         EntityNotes,
	"campaigns":     EntityCampaigns,
	"subscriptions": EntitySubscriptions,
	"tags":          EntityTags,
}

// LoadResult aggregates the outcome of one load operation.
type LoadResult struct {
	TotalRecords int
	SuccessCount int
	FailedCount  int
}

// Add accumulates another result into r.
func (r *LoadResult) Add(other LoadResult) {
	r.TotalRecords += other.TotalRecords
	r.SuccessCount += other.SuccessCount
	r.FailedCount += other.FailedCount
}
