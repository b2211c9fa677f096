package domain

import "time"

// Affiliate is a CRM affiliate. ParentID is self-referential; zero means no
// parent.
type Affiliate struct {
	ID           int64
	ContactID    int64
	ParentID     int64
	Status       string
	Code         string
	Name         string
	Email        string
	Company      string
	Website      string
	Phone        string
	City         string
	State        string
	PostalCode   string
	Country      string
	TaxID        string
	PaymentEmail string
	NotifyOnLead bool
	NotifyOnSale bool
	TrackLeadsFor int

	Payments  []AffiliatePayment
	Clawbacks []AffiliateClawback
}

type AffiliatePayment struct {
	ID          int64
	AffiliateID int64
	Amount      float64
	Date        *time.Time
	Notes       string
	Type        string
}

type AffiliateClawback struct {
	ID            int64
	AffiliateID   int64
	Amount        float64
	ContactID     int64
	Date          *time.Time
	Description   string
	FamilyName    string
	GivenName     string
	InvoiceID     int64
	ProductName   string
	Subtotal      float64
	SaleAffiliateID int64
}
