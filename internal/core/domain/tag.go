package domain

// Tag is a CRM tag. Category may arrive embedded in the tag payload and is
// created locally before the tag itself when absent.
type Tag struct {
	ID          int64
	Name        string
	Description string
	CategoryID  int64
	Category    *TagCategory
}

type TagCategory struct {
	ID          int64
	Name        string
	Description string
}
