package keap

import (
	"fmt"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Per-entity endpoint methods. List calls return one decoded page plus the
// pagination envelope; Get calls return a single record by id.

// CustomFieldModels are the parent models whose custom field definitions are
// fetched, in load order.
var CustomFieldModels = []string{"contacts", "companies", "opportunities", "orders", "subscriptions"}

func (c *Client) ListContacts(limit, offset int, extra map[string]string) ([]domain.Contact, PageInfo, error) {
	var envelope struct {
		Contacts []wireContact `json:"contacts"`
		PageInfo
	}
	if err := c.get("contacts", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Contact, 0, len(envelope.Contacts))
	for _, w := range envelope.Contacts {
		out = append(out, transformContact(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetContact(id int64) (domain.Contact, error) {
	var w wireContact
	if err := c.get(fmt.Sprintf("contacts/%d", id), nil, &w); err != nil {
		return domain.Contact{}, err
	}
	return transformContact(w), nil
}

func (c *Client) GetContactCreditCards(contactID int64) ([]domain.CreditCard, error) {
	var wires []wireCreditCard
	if err := c.get(fmt.Sprintf("contacts/%d/creditCards", contactID), nil, &wires); err != nil {
		return nil, err
	}
	out := make([]domain.CreditCard, 0, len(wires))
	for _, w := range wires {
		out = append(out, transformCreditCard(w, contactID))
	}
	return out, nil
}

func (c *Client) ListOrders(limit, offset int, extra map[string]string) ([]domain.Order, PageInfo, error) {
	var envelope struct {
		Orders []wireOrder `json:"orders"`
		PageInfo
	}
	if err := c.get("orders", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Order, 0, len(envelope.Orders))
	for _, w := range envelope.Orders {
		out = append(out, transformOrder(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetOrder(id int64) (domain.Order, error) {
	var w wireOrder
	if err := c.get(fmt.Sprintf("orders/%d", id), nil, &w); err != nil {
		return domain.Order{}, err
	}
	return transformOrder(w), nil
}

func (c *Client) GetOrderPayments(orderID int64) ([]domain.OrderPayment, error) {
	var wires []wireOrderPayment
	if err := c.get(fmt.Sprintf("orders/%d/payments", orderID), nil, &wires); err != nil {
		return nil, err
	}
	out := make([]domain.OrderPayment, 0, len(wires))
	for _, w := range wires {
		out = append(out, transformOrderPayment(w, orderID))
	}
	return out, nil
}

func (c *Client) GetOrderTransactions(orderID int64) ([]domain.OrderTransaction, error) {
	var envelope struct {
		Transactions []wireOrderTransaction `json:"transactions"`
		PageInfo
	}
	if err := c.get(fmt.Sprintf("orders/%d/transactions", orderID), nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]domain.OrderTransaction, 0, len(envelope.Transactions))
	for _, w := range envelope.Transactions {
		out = append(out, transformOrderTransaction(w, orderID))
	}
	return out, nil
}

func (c *Client) ListProducts(limit, offset int, extra map[string]string) ([]domain.Product, PageInfo, error) {
	var envelope struct {
		Products []wireProduct `json:"products"`
		PageInfo
	}
	if err := c.get("products", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Product, 0, len(envelope.Products))
	for _, w := range envelope.Products {
		out = append(out, transformProduct(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetProduct(id int64) (domain.Product, error) {
	var w wireProduct
	if err := c.get(fmt.Sprintf("products/%d", id), nil, &w); err != nil {
		return domain.Product{}, err
	}
	return transformProduct(w), nil
}

func (c *Client) ListTags(limit, offset int, extra map[string]string) ([]domain.Tag, PageInfo, error) {
	var envelope struct {
		Tags []wireTag `json:"tags"`
		PageInfo
	}
	if err := c.get("tags", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Tag, 0, len(envelope.Tags))
	for _, w := range envelope.Tags {
		out = append(out, transformTag(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetTag(id int64) (domain.Tag, error) {
	var w wireTag
	if err := c.get(fmt.Sprintf("tags/%d", id), nil, &w); err != nil {
		return domain.Tag{}, err
	}
	return transformTag(w), nil
}

func (c *Client) ListAffiliates(limit, offset int, extra map[string]string) ([]domain.Affiliate, PageInfo, error) {
	var envelope struct {
		Affiliates []wireAffiliate `json:"affiliates"`
		PageInfo
	}
	if err := c.get("affiliates", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Affiliate, 0, len(envelope.Affiliates))
	for _, w := range envelope.Affiliates {
		out = append(out, transformAffiliate(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetAffiliate(id int64) (domain.Affiliate, error) {
	var w wireAffiliate
	if err := c.get(fmt.Sprintf("affiliates/%d", id), nil, &w); err != nil {
		return domain.Affiliate{}, err
	}
	return transformAffiliate(w), nil
}

func (c *Client) GetAffiliatePayments(affiliateID int64) ([]domain.AffiliatePayment, error) {
	var envelope struct {
		Payments []wireAffiliatePayment `json:"payments"`
		PageInfo
	}
	if err := c.get(fmt.Sprintf("affiliates/%d/payments", affiliateID), nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]domain.AffiliatePayment, 0, len(envelope.Payments))
	for _, w := range envelope.Payments {
		out = append(out, transformAffiliatePayment(w, affiliateID))
	}
	return out, nil
}

func (c *Client) GetAffiliateClawbacks(affiliateID int64) ([]domain.AffiliateClawback, error) {
	var envelope struct {
		Clawbacks []wireAffiliateClawback `json:"clawbacks"`
		PageInfo
	}
	if err := c.get(fmt.Sprintf("affiliates/%d/clawbacks", affiliateID), nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]domain.AffiliateClawback, 0, len(envelope.Clawbacks))
	for _, w := range envelope.Clawbacks {
		out = append(out, transformAffiliateClawback(w, affiliateID))
	}
	return out, nil
}

func (c *Client) ListOpportunities(limit, offset int, extra map[string]string) ([]domain.Opportunity, PageInfo, error) {
	var envelope struct {
		Opportunities []wireOpportunity `json:"opportunities"`
		PageInfo
	}
	if err := c.get("opportunities", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Opportunity, 0, len(envelope.Opportunities))
	for _, w := range envelope.Opportunities {
		out = append(out, transformOpportunity(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetOpportunity(id int64) (domain.Opportunity, error) {
	var w wireOpportunity
	if err := c.get(fmt.Sprintf("opportunities/%d", id), nil, &w); err != nil {
		return domain.Opportunity{}, err
	}
	return transformOpportunity(w), nil
}

func (c *Client) ListTasks(limit, offset int, extra map[string]string) ([]domain.Task, PageInfo, error) {
	var envelope struct {
		Tasks []wireTask `json:"tasks"`
		PageInfo
	}
	if err := c.get("tasks", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Task, 0, len(envelope.Tasks))
	for _, w := range envelope.Tasks {
		out = append(out, transformTask(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetTask(id int64) (domain.Task, error) {
	var w wireTask
	if err := c.get(fmt.Sprintf("tasks/%d", id), nil, &w); err != nil {
		return domain.Task{}, err
	}
	return transformTask(w), nil
}

func (c *Client) ListNotes(limit, offset int, extra map[string]string) ([]domain.Note, PageInfo, error) {
	var envelope struct {
		Notes []wireNote `json:"notes"`
		PageInfo
	}
	if err := c.get("notes", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Note, 0, len(envelope.Notes))
	for _, w := range envelope.Notes {
		out = append(out, transformNote(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetNote(id int64) (domain.Note, error) {
	var w wireNote
	if err := c.get(fmt.Sprintf("notes/%d", id), nil, &w); err != nil {
		return domain.Note{}, err
	}
	return transformNote(w), nil
}

func (c *Client) ListCampaigns(limit, offset int, extra map[string]string) ([]domain.Campaign, PageInfo, error) {
	var envelope struct {
		Campaigns []wireCampaign `json:"campaigns"`
		PageInfo
	}
	if err := c.get("campaigns", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Campaign, 0, len(envelope.Campaigns))
	for _, w := range envelope.Campaigns {
		out = append(out, transformCampaign(w))
	}
	return out, envelope.PageInfo, nil
}

func (c *Client) GetCampaign(id int64) (domain.Campaign, error) {
	var w wireCampaign
	if err := c.get(fmt.Sprintf("campaigns/%d", id), nil, &w); err != nil {
		return domain.Campaign{}, err
	}
	return transformCampaign(w), nil
}

// ListSubscriptions pages through recurring orders. There is no per-id fetch
// for subscriptions upstream.
func (c *Client) ListSubscriptions(limit, offset int, extra map[string]string) ([]domain.Subscription, PageInfo, error) {
	var envelope struct {
		Subscriptions []wireSubscription `json:"subscriptions"`
		PageInfo
	}
	if err := c.get("subscriptions", prepareParams(limit, offset, extra), &envelope); err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]domain.Subscription, 0, len(envelope.Subscriptions))
	for _, w := range envelope.Subscriptions {
		out = append(out, transformSubscription(w))
	}
	return out, envelope.PageInfo, nil
}

// GetCustomFields fetches the custom field definitions of one parent model
// (see CustomFieldModels). The model endpoint is not paginated.
func (c *Client) GetCustomFields(model string) ([]domain.CustomField, error) {
	var envelope struct {
		CustomFields []wireCustomField `json:"custom_fields"`
	}
	if err := c.get(model+"/model", nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]domain.CustomField, 0, len(envelope.CustomFields))
	for _, w := range envelope.CustomFields {
		out = append(out, transformCustomField(w, model))
	}
	return out, nil
}
