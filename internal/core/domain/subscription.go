package domain

import "time"

// Subscription is a recurring order. The upstream offers no per-id fetch for
// subscriptions; the whole record is taken from the paginated list call.
type Subscription struct {
	ID                 int64
	ContactID          int64
	ProductID          int64
	SubscriptionPlanID int64
	PaymentGatewayID   int64
	CreditCardID       int64
	Status             string
	BillingCycle       string
	BillingAmount      float64
	Active             bool
	AutoCharge         bool
	Quantity           int
	NextBillDate       *time.Time
	StartDate          *time.Time
	EndDate            *time.Time
}
