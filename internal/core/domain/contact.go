package domain

import "time"

// Contact is a CRM contact with its owned relationship collections. The
// collections are replaced wholesale on every load so repeated loads never
// accumulate stale links.
type Contact struct {
	ID              int64
	GivenName       string
	FamilyName      string
	MiddleName      string
	CompanyName     string
	JobTitle        string
	EmailOptedIn    bool
	EmailStatus     string
	ScoreValue      string
	OwnerID         int64
	ContactType     string
	LeadSourceID    int64
	PreferredLocale string
	PreferredName   string
	SourceType      string
	SpouseName      string
	TimeZone        string
	Website         string
	Anniversary     *time.Time
	Birthday        *time.Time
	DateCreated     *time.Time
	LastUpdated     *time.Time

	EmailAddresses []EmailAddress
	PhoneNumbers   []PhoneNumber
	Addresses      []ContactAddress
	CreditCards    []CreditCard
	TagIDs         []int64
}

// EmailAddress is one email slot (EMAIL1..EMAIL3) on a contact.
type EmailAddress struct {
	Email string
	Field string
}

type PhoneNumber struct {
	Number    string
	Field     string
	Type      string
	Extension string
}

type ContactAddress struct {
	Line1      string
	Line2      string
	Locality   string
	Region     string
	PostalCode string
	CountryCode string
	Field      string
}

// CreditCard is a stored card reference. Only non-sensitive display fields
// come back from the upstream.
type CreditCard struct {
	ID             int64
	ContactID      int64
	CardType       string
	CardNumber     string
	ExpirationMonth string
	ExpirationYear  string
	ValidationStatus string
}
