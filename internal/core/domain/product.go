package domain

// Product is a CRM product. SubscriptionPlans arrive embedded in the product
// payload and may contain duplicate ids within one response.
type Product struct {
	ID               int64
	SKU              string
	Active           bool
	URL              string
	ProductName      string
	ProductDesc      string
	ProductShortDesc string
	ProductPrice     float64
	SubscriptionOnly bool
	Status           int

	Options           []ProductOption
	SubscriptionPlans []SubscriptionPlan
}

type ProductOption struct {
	ID        int64
	ProductID int64
	Name      string
	Label     string
	Type      string
	Required  bool
}

// SubscriptionPlan is a recurring billing plan attached to a product.
type SubscriptionPlan struct {
	ID                   int64
	ProductID            int64
	Name                 string
	Active               bool
	Cycle                int
	Frequency            int
	NumberOfCycles       int
	PlanPrice            float64
	SubscriptionPlanIndex int
	URL                  string
}
