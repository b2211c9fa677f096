package domain

import "time"

// Opportunity is a sales opportunity in the pipeline.
type Opportunity struct {
	ID              int64
	Title           string
	ContactID       int64
	StageID         int64
	StageName       string
	UserID          int64
	EstimatedCloseDate *time.Time
	ProjectedRevenueHigh float64
	ProjectedRevenueLow  float64
	OpportunityNotes string
	NextActionDate  *time.Time
	NextActionNotes string
	DateCreated     *time.Time
	LastUpdated     *time.Time
}

type Task struct {
	ID           int64
	Title        string
	Description  string
	Type         string
	Priority     int
	Status       string
	ContactID    int64
	UserID       int64
	Completed    bool
	CompletionDate *time.Time
	CreationDate *time.Time
	DueDate      *time.Time
	ModificationDate *time.Time
	RemindTime   int
	URL          string
}

type Note struct {
	ID           int64
	Title        string
	Body         string
	Type         string
	ContactID    int64
	UserID       int64
	DateCreated  *time.Time
	LastUpdated  *time.Time
}

type Campaign struct {
	ID              int64
	Name            string
	Goals           string
	CreatedBy       string
	PublishedStatus bool
	PublishedDate   *time.Time
	TimeZone        string
	DateCreated     *time.Time
	ActiveContactCount    int
	CompletedContactCount int
}
