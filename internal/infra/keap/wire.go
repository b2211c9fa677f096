package keap

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Wire structs mirror the upstream JSON payloads. Transform functions map
// them onto domain records; anything the store doesn't model is dropped here.

// parseTime accepts the timestamp formats Keap mixes across endpoints.
func parseTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z0700", "2006-01-02T15:04:05Z0700", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	slog.Debug("Unparsable timestamp from API", "value", v)
	return nil
}

type wireContact struct {
	ID           int64  `json:"id"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	MiddleName   string `json:"middle_name"`
	CompanyName  string `json:"company_name"`
	JobTitle     string `json:"job_title"`
	EmailOptedIn bool   `json:"email_opted_in"`
	EmailStatus  string `json:"email_status"`
	ScoreValue   string `json:"ScoreValue"`
	OwnerID      int64  `json:"owner_id"`
	ContactType  string `json:"contact_type"`
	LeadSourceID int64  `json:"lead_source_id"`
	PreferredLocale string `json:"preferred_locale"`
	PreferredName   string `json:"preferred_name"`
	SourceType      string `json:"source_type"`
	SpouseName      string `json:"spouse_name"`
	TimeZone        string `json:"time_zone"`
	Website         string `json:"website"`
	Anniversary     string `json:"anniversary"`
	Birthday        string `json:"birthday"`
	DateCreated     string `json:"date_created"`
	LastUpdated     string `json:"last_updated"`

	EmailAddresses []struct {
		Email string `json:"email"`
		Field string `json:"field"`
	} `json:"email_addresses"`
	PhoneNumbers []struct {
		Number    string `json:"number"`
		Field     string `json:"field"`
		Type      string `json:"type"`
		Extension string `json:"extension"`
	} `json:"phone_numbers"`
	Addresses []struct {
		Line1       string `json:"line1"`
		Line2       string `json:"line2"`
		Locality    string `json:"locality"`
		Region      string `json:"region"`
		PostalCode  string `json:"postal_code"`
		CountryCode string `json:"country_code"`
		Field       string `json:"field"`
	} `json:"addresses"`
	TagIDs []int64 `json:"tag_ids"`
}

func transformContact(w wireContact) domain.Contact {
	c := domain.Contact{
		ID:              w.ID,
		GivenName:       w.GivenName,
		FamilyName:      w.FamilyName,
		MiddleName:      w.MiddleName,
		CompanyName:     w.CompanyName,
		JobTitle:        w.JobTitle,
		EmailOptedIn:    w.EmailOptedIn,
		EmailStatus:     w.EmailStatus,
		ScoreValue:      w.ScoreValue,
		OwnerID:         w.OwnerID,
		ContactType:     w.ContactType,
		LeadSourceID:    w.LeadSourceID,
		PreferredLocale: w.PreferredLocale,
		PreferredName:   w.PreferredName,
		SourceType:      w.SourceType,
		SpouseName:      w.SpouseName,
		TimeZone:        w.TimeZone,
		Website:         w.Website,
		Anniversary:     parseTime(w.Anniversary),
		Birthday:        parseTime(w.Birthday),
		DateCreated:     parseTime(w.DateCreated),
		LastUpdated:     parseTime(w.LastUpdated),
		TagIDs:          w.TagIDs,
	}
	for _, e := range w.EmailAddresses {
		c.EmailAddresses = append(c.EmailAddresses, domain.EmailAddress{Email: e.Email, Field: e.Field})
	}
	for _, p := range w.PhoneNumbers {
		c.PhoneNumbers = append(c.PhoneNumbers, domain.PhoneNumber{Number: p.Number, Field: p.Field, Type: p.Type, Extension: p.Extension})
	}
	for _, a := range w.Addresses {
		c.Addresses = append(c.Addresses, domain.ContactAddress{
			Line1: a.Line1, Line2: a.Line2, Locality: a.Locality, Region: a.Region,
			PostalCode: a.PostalCode, CountryCode: a.CountryCode, Field: a.Field,
		})
	}
	return c
}

type wireCreditCard struct {
	ID              int64  `json:"id"`
	ContactID       int64  `json:"contact_id"`
	CardType        string `json:"card_type"`
	CardNumber      string `json:"card_number"`
	ExpirationMonth string `json:"expiration_month"`
	ExpirationYear  string `json:"expiration_year"`
	ValidationStatus string `json:"validation_status"`
}

func transformCreditCard(w wireCreditCard, contactID int64) domain.CreditCard {
	if w.ContactID == 0 {
		w.ContactID = contactID
	}
	return domain.CreditCard{
		ID: w.ID, ContactID: w.ContactID, CardType: w.CardType, CardNumber: w.CardNumber,
		ExpirationMonth: w.ExpirationMonth, ExpirationYear: w.ExpirationYear,
		ValidationStatus: w.ValidationStatus,
	}
}

type wireTag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    *struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"category"`
}

func transformTag(w wireTag) domain.Tag {
	t := domain.Tag{ID: w.ID, Name: w.Name, Description: w.Description}
	if w.Category != nil && w.Category.ID != 0 {
		t.CategoryID = w.Category.ID
		t.Category = &domain.TagCategory{ID: w.Category.ID, Name: w.Category.Name, Description: w.Category.Description}
	}
	return t
}

type wireProduct struct {
	ID               int64   `json:"id"`
	SKU              string  `json:"sku"`
	Active           bool    `json:"active"`
	URL              string  `json:"url"`
	ProductName      string  `json:"product_name"`
	ProductDesc      string  `json:"product_desc"`
	ProductShortDesc string  `json:"product_short_desc"`
	ProductPrice     float64 `json:"product_price"`
	SubscriptionOnly bool    `json:"subscription_only"`
	Status           int     `json:"status"`

	Options []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Label    string `json:"label"`
		Type     string `json:"type"`
		Required bool   `json:"required"`
	} `json:"product_options"`
	SubscriptionPlans []wireSubscriptionPlan `json:"subscription_plans"`
}

type wireSubscriptionPlan struct {
	ID                    int64   `json:"id"`
	Active                bool    `json:"active"`
	Cycle                 int     `json:"cycle"`
	Frequency             int     `json:"frequency"`
	NumberOfCycles        int     `json:"number_of_cycles"`
	PlanPrice             float64 `json:"plan_price"`
	SubscriptionPlanIndex int     `json:"subscription_plan_index"`
	SubscriptionPlanName  string  `json:"subscription_plan_name"`
	URL                   string  `json:"url"`
}

func transformProduct(w wireProduct) domain.Product {
	p := domain.Product{
		ID: w.ID, SKU: w.SKU, Active: w.Active, URL: w.URL,
		ProductName: w.ProductName, ProductDesc: w.ProductDesc,
		ProductShortDesc: w.ProductShortDesc, ProductPrice: w.ProductPrice,
		SubscriptionOnly: w.SubscriptionOnly, Status: w.Status,
	}
	for _, o := range w.Options {
		p.Options = append(p.Options, domain.ProductOption{
			ID: o.ID, ProductID: w.ID, Name: o.Name, Label: o.Label, Type: o.Type, Required: o.Required,
		})
	}
	for _, sp := range w.SubscriptionPlans {
		p.SubscriptionPlans = append(p.SubscriptionPlans, domain.SubscriptionPlan{
			ID: sp.ID, ProductID: w.ID, Name: sp.SubscriptionPlanName, Active: sp.Active,
			Cycle: sp.Cycle, Frequency: sp.Frequency, NumberOfCycles: sp.NumberOfCycles,
			PlanPrice: sp.PlanPrice, SubscriptionPlanIndex: sp.SubscriptionPlanIndex, URL: sp.URL,
		})
	}
	return p
}

type wireOrder struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Status           string  `json:"status"`
	Recurring        bool    `json:"recurring"`
	Total            float64 `json:"total"`
	TotalPaid        float64 `json:"total_paid"`
	TotalDue         float64 `json:"total_due"`
	RefundTotal      float64 `json:"refund_total"`
	Notes            string  `json:"notes"`
	OrderType        string  `json:"order_type"`
	SourceType       string  `json:"source_type"`
	InvoiceNumber    int64   `json:"invoice_number"`
	LeadAffiliateID  int64   `json:"lead_affiliate_id"`
	SalesAffiliateID int64   `json:"sales_affiliate_id"`
	AllowPayment     bool    `json:"allow_payment"`
	AllowPaypal      bool    `json:"allow_paypal"`
	CreationDate     string  `json:"creation_date"`
	ModificationDate string  `json:"modification_date"`
	OrderDate        string  `json:"order_date"`
	Contact          struct {
		ID int64 `json:"id"`
	} `json:"contact"`
	OrderItems []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Type        string  `json:"type"`
		Quantity    int     `json:"quantity"`
		Cost        float64 `json:"cost"`
		Discount    float64 `json:"discount"`
		Product     struct {
			ID    int64   `json:"id"`
			Price float64 `json:"price"`
		} `json:"product"`
	} `json:"order_items"`
	PaymentPlan *wirePaymentPlan `json:"payment_plan"`
	ShippingInformation *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Company   string `json:"company"`
		Street1   string `json:"street1"`
		Street2   string `json:"street2"`
		City      string `json:"city"`
		State     string `json:"state"`
		Zip       string `json:"zip"`
		Country   string `json:"country"`
		Phone     string `json:"phone"`
		InvoiceToCompany bool `json:"invoice_to_company"`
	} `json:"shipping_information"`
}

type wirePaymentPlan struct {
	AutoCharge           bool    `json:"auto_charge"`
	CreditCardID         int64   `json:"credit_card_id"`
	DaysBetweenPayments  int     `json:"days_between_payments"`
	InitialPaymentAmount float64 `json:"initial_payment_amount"`
	InitialPaymentDate   string  `json:"initial_payment_date"`
	NumberOfPayments     int     `json:"number_of_payments"`
	PlanStartDate        string  `json:"plan_start_date"`
	PaymentMethodID      string  `json:"payment_method_id"`
	MaxChargeAttempts    int     `json:"max_charge_attempts"`
	DaysBetweenRetries   int     `json:"days_between_retries"`
	PaymentGateway       struct {
		MerchantAccountID   int64  `json:"merchant_account_id"`
		MerchantAccountName string `json:"merchant_account_name"`
	} `json:"payment_gateway"`
}

func transformOrder(w wireOrder) domain.Order {
	o := domain.Order{
		ID: w.ID, Title: w.Title, Status: w.Status, Recurring: w.Recurring,
		Total: w.Total, TotalPaid: w.TotalPaid, TotalDue: w.TotalDue,
		RefundTotal: w.RefundTotal, Notes: w.Notes, OrderType: w.OrderType,
		SourceType: w.SourceType, InvoiceNumber: w.InvoiceNumber,
		ContactID: w.Contact.ID, AllowPayment: w.AllowPayment, AllowPaypal: w.AllowPaypal,
		CreationDate:     parseTime(w.CreationDate),
		ModificationDate: parseTime(w.ModificationDate),
		OrderDate:        parseTime(w.OrderDate),
	}
	// Affiliate id zero from the upstream means "no affiliate", not a
	// reference to affiliate 0.
	if w.LeadAffiliateID > 0 {
		id := w.LeadAffiliateID
		o.LeadAffiliateID = &id
	}
	if w.SalesAffiliateID > 0 {
		id := w.SalesAffiliateID
		o.SalesAffiliateID = &id
	}
	for _, it := range w.OrderItems {
		o.Items = append(o.Items, domain.OrderItem{
			ID: it.ID, OrderID: w.ID, ProductID: it.Product.ID,
			Name: it.Name, Description: it.Description, Type: it.Type,
			Quantity: it.Quantity, Price: it.Product.Price, Cost: it.Cost, Discount: it.Discount,
		})
	}
	if w.PaymentPlan != nil {
		o.PaymentPlan = &domain.PaymentPlan{
			OrderID:              w.ID,
			AutoCharge:           w.PaymentPlan.AutoCharge,
			CreditCardID:         w.PaymentPlan.CreditCardID,
			DaysBetweenPayments:  w.PaymentPlan.DaysBetweenPayments,
			InitialPaymentAmount: w.PaymentPlan.InitialPaymentAmount,
			InitialPaymentDate:   parseTime(w.PaymentPlan.InitialPaymentDate),
			NumberOfPayments:     w.PaymentPlan.NumberOfPayments,
			MerchantAccountID:    w.PaymentPlan.PaymentGateway.MerchantAccountID,
			MerchantAccountName:  w.PaymentPlan.PaymentGateway.MerchantAccountName,
			PlanStartDate:        parseTime(w.PaymentPlan.PlanStartDate),
			PaymentMethodID:      w.PaymentPlan.PaymentMethodID,
			MaxChargeAttempts:    w.PaymentPlan.MaxChargeAttempts,
			DaysBetweenRetries:   w.PaymentPlan.DaysBetweenRetries,
		}
	}
	if w.ShippingInformation != nil {
		s := w.ShippingInformation
		o.ShippingInformation = &domain.ShippingInformation{
			OrderID: w.ID, FirstName: s.FirstName, LastName: s.LastName,
			Company: s.Company, Street1: s.Street1, Street2: s.Street2,
			City: s.City, State: s.State, Zip: s.Zip, Country: s.Country,
			Phone: s.Phone, InvoiceToCompany: s.InvoiceToCompany,
		}
	}
	return o
}

type wireOrderPayment struct {
	ID             int64   `json:"id"`
	InvoiceID      int64   `json:"invoice_id"`
	Amount         float64 `json:"amount"`
	PayStatus      string  `json:"pay_status"`
	PayTime        string  `json:"pay_time"`
	PaymentID      int64   `json:"payment_id"`
	Note           string  `json:"note"`
	SkipCommission bool    `json:"skip_commission"`
	RefundInvoicePaymentID int64 `json:"refund_invoice_payment_id"`
}

func transformOrderPayment(w wireOrderPayment, orderID int64) domain.OrderPayment {
	return domain.OrderPayment{
		ID: w.ID, OrderID: orderID, InvoiceID: w.InvoiceID, Amount: w.Amount,
		PayStatus: w.PayStatus, PayTime: parseTime(w.PayTime), PaymentID: w.PaymentID,
		Note: w.Note, SkipCommission: w.SkipCommission,
		RefundInvoicePaymentID: w.RefundInvoicePaymentID,
	}
}

type wireOrderTransaction struct {
	ID              int64   `json:"id"`
	ContactID       int64   `json:"contact_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Gateway         string  `json:"gateway"`
	GatewayAccountName string `json:"gateway_account_name"`
	TransactionDate string  `json:"transaction_date"`
	Status          string  `json:"status"`
	TestTransaction bool    `json:"test"`
	Type            string  `json:"type"`
	Errors          string  `json:"errors"`
}

func transformOrderTransaction(w wireOrderTransaction, orderID int64) domain.OrderTransaction {
	return domain.OrderTransaction{
		ID: w.ID, OrderID: orderID, ContactID: w.ContactID, Amount: w.Amount,
		Currency: w.Currency, Gateway: w.Gateway, GatewayAccountName: w.GatewayAccountName,
		PaymentDate: parseTime(w.TransactionDate), Status: w.Status,
		TestTransaction: w.TestTransaction, Type: w.Type, Errors: w.Errors,
	}
}

type wireAffiliate struct {
	ID           int64  `json:"id"`
	ContactID    int64  `json:"contact_id"`
	ParentID     int64  `json:"parent_id"`
	Status       string `json:"status"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Website      string `json:"website"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	TaxID        string `json:"tax_id"`
	PaymentEmail string `json:"payment_email"`
	NotifyOnLead bool   `json:"notify_on_lead"`
	NotifyOnSale bool   `json:"notify_on_sale"`
	TrackLeadsFor int   `json:"track_leads_for"`
}

func transformAffiliate(w wireAffiliate) domain.Affiliate {
	return domain.Affiliate{
		ID: w.ID, ContactID: w.ContactID, ParentID: w.ParentID, Status: w.Status,
		Code: w.Code, Name: w.Name, Email: w.Email, Company: w.Company,
		Website: w.Website, Phone: w.Phone, City: w.City, State: w.State,
		PostalCode: w.PostalCode, Country: w.Country, TaxID: w.TaxID,
		PaymentEmail: w.PaymentEmail, NotifyOnLead: w.NotifyOnLead,
		NotifyOnSale: w.NotifyOnSale, TrackLeadsFor: w.TrackLeadsFor,
	}
}

type wireAffiliatePayment struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Notes  string  `json:"notes"`
	Type   string  `json:"type"`
}

func transformAffiliatePayment(w wireAffiliatePayment, affiliateID int64) domain.AffiliatePayment {
	return domain.AffiliatePayment{
		ID: w.ID, AffiliateID: affiliateID, Amount: w.Amount,
		Date: parseTime(w.Date), Notes: w.Notes, Type: w.Type,
	}
}

type wireAffiliateClawback struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	ContactID   int64   `json:"contact_id"`
	Date        string  `json:"date_earned"`
	Description string  `json:"description"`
	FamilyName  string  `json:"family_name"`
	GivenName   string  `json:"given_name"`
	InvoiceID   int64   `json:"invoice_id"`
	ProductName string  `json:"product_name"`
	Subtotal    float64 `json:"subtotal"`
	SaleAffiliateID int64 `json:"sale_affiliate_id"`
}

func transformAffiliateClawback(w wireAffiliateClawback, affiliateID int64) domain.AffiliateClawback {
	return domain.AffiliateClawback{
		ID: w.ID, AffiliateID: affiliateID, Amount: w.Amount, ContactID: w.ContactID,
		Date: parseTime(w.Date), Description: w.Description, FamilyName: w.FamilyName,
		GivenName: w.GivenName, InvoiceID: w.InvoiceID, ProductName: w.ProductName,
		Subtotal: w.Subtotal, SaleAffiliateID: w.SaleAffiliateID,
	}
}

type wireSubscription struct {
	ID                 int64   `json:"id"`
	ContactID          int64   `json:"contact_id"`
	ProductID          int64   `json:"product_id"`
	SubscriptionPlanID int64   `json:"subscription_plan_id"`
	PaymentGatewayID   int64   `json:"payment_gateway_id"`
	CreditCardID       int64   `json:"credit_card_id"`
	Status             string  `json:"status"`
	BillingCycle       string  `json:"billing_cycle"`
	BillingAmount      float64 `json:"billing_amount"`
	Active             bool    `json:"active"`
	AutoCharge         bool    `json:"auto_charge"`
	Quantity           int     `json:"quantity"`
	NextBillDate       string  `json:"next_bill_date"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
}

func transformSubscription(w wireSubscription) domain.Subscription {
	return domain.Subscription{
		ID: w.ID, ContactID: w.ContactID, ProductID: w.ProductID,
		SubscriptionPlanID: w.SubscriptionPlanID, PaymentGatewayID: w.PaymentGatewayID,
		CreditCardID: w.CreditCardID, Status: w.Status, BillingCycle: w.BillingCycle,
		BillingAmount: w.BillingAmount, Active: w.Active, AutoCharge: w.AutoCharge,
		Quantity: w.Quantity, NextBillDate: parseTime(w.NextBillDate),
		StartDate: parseTime(w.StartDate), EndDate: parseTime(w.EndDate),
	}
}

type wireOpportunity struct {
	ID    int64  `json:"id"`
	Title string `json:"opportunity_title"`
	Contact struct {
		ID int64 `json:"id"`
	} `json:"contact"`
	Stage struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"stage"`
	User struct {
		ID int64 `json:"id"`
	} `json:"user"`
	EstimatedCloseDate   string  `json:"estimated_close_date"`
	ProjectedRevenueHigh float64 `json:"projected_revenue_high"`
	ProjectedRevenueLow  float64 `json:"projected_revenue_low"`
	OpportunityNotes     string  `json:"opportunity_notes"`
	NextActionDate       string  `json:"next_action_date"`
	NextActionNotes      string  `json:"next_action_notes"`
	DateCreated          string  `json:"date_created"`
	LastUpdated          string  `json:"last_updated"`
}

func transformOpportunity(w wireOpportunity) domain.Opportunity {
	return domain.Opportunity{
		ID: w.ID, Title: w.Title, ContactID: w.Contact.ID,
		StageID: w.Stage.ID, StageName: w.Stage.Name, UserID: w.User.ID,
		EstimatedCloseDate:   parseTime(w.EstimatedCloseDate),
		ProjectedRevenueHigh: w.ProjectedRevenueHigh,
		ProjectedRevenueLow:  w.ProjectedRevenueLow,
		OpportunityNotes:     w.OpportunityNotes,
		NextActionDate:       parseTime(w.NextActionDate),
		NextActionNotes:      w.NextActionNotes,
		DateCreated:          parseTime(w.DateCreated),
		LastUpdated:          parseTime(w.LastUpdated),
	}
}

type wireTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
	Contact     struct {
		ID int64 `json:"id"`
	} `json:"contact"`
	UserID         int64  `json:"user_id"`
	Completed      bool   `json:"completed"`
	CompletionDate string `json:"completion_date"`
	CreationDate   string `json:"creation_date"`
	DueDate        string `json:"due_date"`
	ModificationDate string `json:"modification_date"`
	RemindTime     int    `json:"remind_time"`
	URL            string `json:"url"`
}

func transformTask(w wireTask) domain.Task {
	status := "pending"
	if w.Completed {
		status = "completed"
	}
	return domain.Task{
		ID: w.ID, Title: w.Title, Description: w.Description, Type: w.Type,
		Priority: w.Priority, Status: status, ContactID: w.Contact.ID, UserID: w.UserID,
		Completed: w.Completed, CompletionDate: parseTime(w.CompletionDate),
		CreationDate: parseTime(w.CreationDate), DueDate: parseTime(w.DueDate),
		ModificationDate: parseTime(w.ModificationDate), RemindTime: w.RemindTime, URL: w.URL,
	}
}

type wireNote struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Type      string `json:"type"`
	ContactID int64  `json:"contact_id"`
	UserID    int64  `json:"user_id"`
	DateCreated string `json:"date_created"`
	LastUpdated string `json:"last_updated"`
}

func transformNote(w wireNote) domain.Note {
	return domain.Note{
		ID: w.ID, Title: w.Title, Body: w.Body, Type: w.Type,
		ContactID: w.ContactID, UserID: w.UserID,
		DateCreated: parseTime(w.DateCreated), LastUpdated: parseTime(w.LastUpdated),
	}
}

type wireCampaign struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Goals           string `json:"goals"`
	CreatedBy       string `json:"created_by_global_id"`
	PublishedStatus bool   `json:"published_status"`
	PublishedDate   string `json:"published_date"`
	TimeZone        string `json:"time_zone"`
	DateCreated     string `json:"date_created"`
	ActiveContactCount    int `json:"active_contact_count"`
	CompletedContactCount int `json:"completed_contact_count"`
}

func transformCampaign(w wireCampaign) domain.Campaign {
	return domain.Campaign{
		ID: w.ID, Name: w.Name, Goals: w.Goals, CreatedBy: w.CreatedBy,
		PublishedStatus: w.PublishedStatus, PublishedDate: parseTime(w.PublishedDate),
		TimeZone: w.TimeZone, DateCreated: parseTime(w.DateCreated),
		ActiveContactCount:    w.ActiveContactCount,
		CompletedContactCount: w.CompletedContactCount,
	}
}

type wireCustomField struct {
	ID           int64    `json:"id"`
	Label        string   `json:"label"`
	FieldName    string   `json:"field_name"`
	FieldType    string   `json:"field_type"`
	RecordType   string   `json:"record_type"`
	DefaultValue string   `json:"default_value"`
	Options      []struct {
		Label string `json:"label"`
	} `json:"options"`
}

// customFieldTypes maps upstream field_type names onto the store's enum.
var customFieldTypes = map[string]domain.CustomFieldType{
	"TEXT":        domain.CustomFieldText,
	"NUMBER":      domain.CustomFieldNumber,
	"DATE":        domain.CustomFieldDate,
	"DROPDOWN":    domain.CustomFieldDropdown,
	"MULTISELECT": domain.CustomFieldMultiselect,
	"RADIO":       domain.CustomFieldRadio,
	"CHECKBOX":    domain.CustomFieldCheckbox,
	"WEBSITE":     domain.CustomFieldURL,
	"URL":         domain.CustomFieldURL,
	"EMAIL":       domain.CustomFieldEmail,
	"PHONE_NUMBER": domain.CustomFieldPhone,
	"PHONE":       domain.CustomFieldPhone,
	"CURRENCY":    domain.CustomFieldCurrency,
	"PERCENT":     domain.CustomFieldPercent,
	"DATE_TIME":   domain.CustomFieldDateTime,
	"DATETIME":    domain.CustomFieldDateTime,
	"TEXT_AREA":   domain.CustomFieldMultiline,
	"MULTILINE":   domain.CustomFieldMultiline,
	"LIST_BOX":    domain.CustomFieldList,
	"LIST":        domain.CustomFieldList,
	"YES_NO":      domain.CustomFieldBoolean,
	"BOOLEAN":     domain.CustomFieldBoolean,
	"HIDDEN":      domain.CustomFieldHidden,
}

func transformCustomField(w wireCustomField, recordType string) domain.CustomField {
	ft, ok := customFieldTypes[strings.ToUpper(strings.TrimSpace(w.FieldType))]
	if !ok {
		slog.Warn("Unmapped custom field type, falling back to TEXT",
			"field_type", w.FieldType, "field_id", w.ID)
		ft = domain.CustomFieldText
	}
	if w.RecordType == "" {
		w.RecordType = recordType
	}
	cf := domain.CustomField{
		ID:           w.ID,
		Name:         w.FieldName,
		Label:        w.Label,
		FieldName:    w.FieldName,
		Type:         ft,
		RecordType:   w.RecordType,
		DefaultValue: w.DefaultValue,
	}
	if cf.Name == "" {
		cf.Name = w.Label
	}
	for _, o := range w.Options {
		cf.Options = append(cf.Options, o.Label)
	}
	return cf
}
