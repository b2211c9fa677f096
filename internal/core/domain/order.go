package domain

import "time"

// Order is a CRM order. LeadAffiliateID and SalesAffiliateID are nil when the
// upstream reports affiliate id 0 (meaning "no affiliate").
type Order struct {
	ID               int64
	Title            string
	Status           string
	Recurring        bool
	Total            float64
	TotalPaid        float64
	TotalDue         float64
	RefundTotal      float64
	Notes            string
	OrderType        string
	SourceType       string
	InvoiceNumber    int64
	ContactID        int64
	ProductID        int64
	LeadAffiliateID  *int64
	SalesAffiliateID *int64
	AllowPayment     bool
	AllowPaypal      bool
	CreationDate     *time.Time
	ModificationDate *time.Time
	OrderDate        *time.Time

	Items        []OrderItem
	Payments     []OrderPayment
	Transactions []OrderTransaction
	PaymentPlan  *PaymentPlan
	ShippingInformation *ShippingInformation
}

type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Name         string
	Description  string
	Type         string
	Quantity     int
	Price        float64
	Cost         float64
	Discount     float64
}

type OrderPayment struct {
	ID             int64
	OrderID        int64
	InvoiceID      int64
	Amount         float64
	PayStatus      string
	PayTime        *time.Time
	PaymentID      int64
	Note           string
	SkipCommission bool
	RefundInvoicePaymentID int64
}

type OrderTransaction struct {
	ID             int64
	OrderID        int64
	ContactID      int64
	Amount         float64
	Currency       string
	Gateway        string
	GatewayAccountName string
	PaymentDate    *time.Time
	Status         string
	TestTransaction bool
	Type           string
	Errors         string
}

// PaymentPlan is the per-order payment schedule. MerchantAccountID references
// a payment gateway row that may need to be created from the order payload.
type PaymentPlan struct {
	OrderID               int64
	AutoCharge            bool
	CreditCardID          int64
	DaysBetweenPayments   int
	InitialPaymentAmount  float64
	InitialPaymentDate    *time.Time
	NumberOfPayments      int
	MerchantAccountID     int64
	MerchantAccountName   string
	PlanStartDate         *time.Time
	PaymentMethodID       string
	MaxChargeAttempts     int
	DaysBetweenRetries    int
}

// PaymentGateway is a merchant account. Stub rows are created on demand when
// an order's payment plan references an unknown gateway id.
type PaymentGateway struct {
	ID       int64
	Name     string
	Type     string
	IsActive bool
}

type ShippingInformation struct {
	OrderID      int64
	FirstName    string
	LastName     string
	Company      string
	Street1      string
	Street2      string
	City         string
	State        string
	Zip          string
	Country      string
	Phone        string
	InvoiceToCompany bool
}
