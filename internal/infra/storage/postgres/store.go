package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Store implements storage.EntityStore using PostgreSQL.
type Store struct {
	db *DB
}

// NewStore creates a new PostgreSQL entity store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// entityTables maps entity types to their primary table for existence probes.
var entityTables = map[domain.EntityType]string{
	domain.EntityContacts:      "contacts",
	domain.EntityTags:          "tags",
	domain.EntityProducts:      "products",
	domain.EntityOrders:        "orders",
	domain.EntityAffiliates:    "affiliates",
	domain.EntityOpportunities: "opportunities",
	domain.EntityTasks:         "tasks",
	domain.EntityNotes:         "notes",
	domain.EntityCampaigns:     "campaigns",
	domain.EntitySubscriptions: "subscriptions",
	domain.EntityCustomFields:  "custom_fields",
}

// Exists reports whether an entity row is present.
func (s *Store) Exists(ctx context.Context, entityType domain.EntityType, id int64) (bool, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return false, fmt.Errorf("no table for entity type %s", entityType)
	}
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table), id)
	if err != nil {
		return false, wrapExec("exists "+table, err)
	}
	return exists, nil
}

// ExistingTagIDs filters ids down to the ones present in the tag table.
func (s *Store) ExistingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []int64
	err := s.db.SelectContext(ctx, &out,
		"SELECT id FROM tags WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, wrapExec("filter tag ids", err)
	}
	return out, nil
}

// UpsertContact writes the contact row and replaces its owned collections
// (emails, phones, addresses, credit cards, tag links) in one transaction.
func (s *Store) UpsertContact(ctx context.Context, c *domain.Contact) error {
	uow, err := s.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	_, err = uow.tx.ExecContext(ctx, `
		INSERT INTO contacts (
			id, given_name, family_name, middle_name, company_name, job_title,
			email_opted_in, email_status, score_value, owner_id, contact_type,
			lead_source_id, preferred_locale, preferred_name, source_type,
			spouse_name, time_zone, website, anniversary, birthday,
			date_created, last_updated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		ON CONFLICT (id) DO UPDATE SET
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			middle_name = EXCLUDED.middle_name,
			company_name = EXCLUDED.company_name,
			job_title = EXCLUDED.job_title,
			email_opted_in = EXCLUDED.email_opted_in,
			email_status = EXCLUDED.email_status,
			score_value = EXCLUDED.score_value,
			owner_id = EXCLUDED.owner_id,
			contact_type = EXCLUDED.contact_type,
			lead_source_id = EXCLUDED.lead_source_id,
			preferred_locale = EXCLUDED.preferred_locale,
			preferred_name = EXCLUDED.preferred_name,
			source_type = EXCLUDED.source_type,
			spouse_name = EXCLUDED.spouse_name,
			time_zone = EXCLUDED.time_zone,
			website = EXCLUDED.website,
			anniversary = EXCLUDED.anniversary,
			birthday = EXCLUDED.birthday,
			date_created = EXCLUDED.date_created,
			last_updated = EXCLUDED.last_updated`,
		c.ID, c.GivenName, c.FamilyName, c.MiddleName, c.CompanyName, c.JobTitle,
		c.EmailOptedIn, c.EmailStatus, c.ScoreValue, c.OwnerID, c.ContactType,
		c.LeadSourceID, c.PreferredLocale, c.PreferredName, c.SourceType,
		c.SpouseName, c.TimeZone, c.Website, c.Anniversary, c.Birthday,
		c.DateCreated, c.LastUpdated)
	if err != nil {
		return wrapExec("upsert contact", err)
	}

	// Replace owned collections wholesale so removals upstream propagate.
	for _, table := range []string{"contact_email_addresses", "contact_phone_numbers", "contact_addresses", "credit_cards", "contact_tags"} {
		if _, err := uow.tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE contact_id = $1", table), c.ID); err != nil {
			return wrapExec("clear "+table, err)
		}
	}
	for _, e := range c.EmailAddresses {
		if _, err := uow.tx.ExecContext(ctx,
			"INSERT INTO contact_email_addresses (contact_id, email, field) VALUES ($1,$2,$3)",
			c.ID, e.Email, e.Field); err != nil {
			return wrapExec("insert contact email", err)
		}
	}
	for _, p := range c.PhoneNumbers {
		if _, err := uow.tx.ExecContext(ctx,
			"INSERT INTO contact_phone_numbers (contact_id, number, field, type, extension) VALUES ($1,$2,$3,$4,$5)",
			c.ID, p.Number, p.Field, p.Type, p.Extension); err != nil {
			return wrapExec("insert contact phone", err)
		}
	}
	for _, a := range c.Addresses {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO contact_addresses (contact_id, line1, line2, locality, region, postal_code, country_code, field)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			c.ID, a.Line1, a.Line2, a.Locality, a.Region, a.PostalCode, a.CountryCode, a.Field); err != nil {
			return wrapExec("insert contact address", err)
		}
	}
	for _, cc := range c.CreditCards {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO credit_cards (id, contact_id, card_type, card_number, expiration_month, expiration_year, validation_status)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO UPDATE SET
				contact_id = EXCLUDED.contact_id,
				card_type = EXCLUDED.card_type,
				card_number = EXCLUDED.card_number,
				expiration_month = EXCLUDED.expiration_month,
				expiration_year = EXCLUDED.expiration_year,
				validation_status = EXCLUDED.validation_status`,
			cc.ID, c.ID, cc.CardType, cc.CardNumber, cc.ExpirationMonth, cc.ExpirationYear, cc.ValidationStatus); err != nil {
			return wrapExec("upsert credit card", err)
		}
	}
	for _, tagID := range c.TagIDs {
		if _, err := uow.tx.ExecContext(ctx,
			"INSERT INTO contact_tags (contact_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING",
			c.ID, tagID); err != nil {
			return wrapExec("insert contact tag", err)
		}
	}

	return uow.Commit()
}

// UpsertTag writes the tag's category first (when embedded) so the tag's
// category reference never dangles.
func (s *Store) UpsertTag(ctx context.Context, t *domain.Tag) error {
	uow, err := s.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	if t.Category != nil {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO tag_categories (id, name, description)
			VALUES ($1,$2,$3)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description`,
			t.Category.ID, t.Category.Name, t.Category.Description); err != nil {
			return wrapExec("upsert tag category", err)
		}
	}

	var categoryID any
	if t.CategoryID != 0 {
		categoryID = t.CategoryID
	}
	if _, err := uow.tx.ExecContext(ctx, `
		INSERT INTO tags (id, name, description, category_id)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category_id = EXCLUDED.category_id`,
		t.ID, t.Name, t.Description, categoryID); err != nil {
		return wrapExec("upsert tag", err)
	}

	return uow.Commit()
}

// UpsertProduct writes the product row, replaces its options, and upserts the
// embedded subscription plans. Each plan runs in its own savepoint so one bad
// plan does not take the product down with it.
func (s *Store) UpsertProduct(ctx context.Context, p *domain.Product) error {
	uow, err := s.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	_, err = uow.tx.ExecContext(ctx, `
		INSERT INTO products (
			id, sku, active, url, product_name, product_desc,
			product_short_desc, product_price, subscription_only, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku,
			active = EXCLUDED.active,
			url = EXCLUDED.url,
			product_name = EXCLUDED.product_name,
			product_desc = EXCLUDED.product_desc,
			product_short_desc = EXCLUDED.product_short_desc,
			product_price = EXCLUDED.product_price,
			subscription_only = EXCLUDED.subscription_only,
			status = EXCLUDED.status`,
		p.ID, p.SKU, p.Active, p.URL, p.ProductName, p.ProductDesc,
		p.ProductShortDesc, p.ProductPrice, p.SubscriptionOnly, p.Status)
	if err != nil {
		return wrapExec("upsert product", err)
	}

	if _, err := uow.tx.ExecContext(ctx,
		"DELETE FROM product_options WHERE product_id = $1", p.ID); err != nil {
		return wrapExec("clear product options", err)
	}
	for _, o := range p.Options {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO product_options (id, product_id, name, label, type, required)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, p.ID, o.Name, o.Label, o.Type, o.Required); err != nil {
			return wrapExec("insert product option", err)
		}
	}

	// Plans can repeat within one payload; keep the first of each id.
	seen := make(map[int64]bool)
	for i, sp := range p.SubscriptionPlans {
		if seen[sp.ID] {
			continue
		}
		seen[sp.ID] = true
		sp := sp
		err := uow.InSavepoint(ctx, fmt.Sprintf("sp_plan_%d", i), func() error {
			_, err := uow.tx.ExecContext(ctx, `
				INSERT INTO subscription_plans (
					id, product_id, name, active, cycle, frequency,
					number_of_cycles, plan_price, subscription_plan_index, url
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
				ON CONFLICT (id) DO UPDATE SET
					product_id = EXCLUDED.product_id,
					name = EXCLUDED.name,
					active = EXCLUDED.active,
					cycle = EXCLUDED.cycle,
					frequency = EXCLUDED.frequency,
					number_of_cycles = EXCLUDED.number_of_cycles,
					plan_price = EXCLUDED.plan_price,
					subscription_plan_index = EXCLUDED.subscription_plan_index,
					url = EXCLUDED.url`,
				sp.ID, p.ID, sp.Name, sp.Active, sp.Cycle, sp.Frequency,
				sp.NumberOfCycles, sp.PlanPrice, sp.SubscriptionPlanIndex, sp.URL)
			return wrapExec("upsert subscription plan", err)
		})
		if err != nil {
			slog.Warn("Failed to save embedded subscription plan",
				"product_id", p.ID, "plan_id", sp.ID, "error", err)
		}
	}

	return uow.Commit()
}

// EnsurePaymentGateway inserts a gateway row if absent, leaving existing rows
// untouched.
func (s *Store) EnsurePaymentGateway(ctx context.Context, g *domain.PaymentGateway) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_gateways (id, name, type, is_active)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO NOTHING`,
		g.ID, g.Name, g.Type, g.IsActive)
	return wrapExec("ensure payment gateway", err)
}

// UpsertOrder writes the order row, its payment plan, and replaces items,
// payments, transactions and shipping in one transaction.
func (s *Store) UpsertOrder(ctx context.Context, o *domain.Order) error {
	uow, err := s.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	_, err = uow.tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, title, status, recurring, total, total_paid, total_due,
			refund_total, notes, order_type, source_type, invoice_number,
			contact_id, lead_affiliate_id, sales_affiliate_id,
			allow_payment, allow_paypal, creation_date, modification_date, order_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			recurring = EXCLUDED.recurring,
			total = EXCLUDED.total,
			total_paid = EXCLUDED.total_paid,
			total_due = EXCLUDED.total_due,
			refund_total = EXCLUDED.refund_total,
			notes = EXCLUDED.notes,
			order_type = EXCLUDED.order_type,
			source_type = EXCLUDED.source_type,
			invoice_number = EXCLUDED.invoice_number,
			contact_id = EXCLUDED.contact_id,
			lead_affiliate_id = EXCLUDED.lead_affiliate_id,
			sales_affiliate_id = EXCLUDED.sales_affiliate_id,
			allow_payment = EXCLUDED.allow_payment,
			allow_paypal = EXCLUDED.allow_paypal,
			creation_date = EXCLUDED.creation_date,
			modification_date = EXCLUDED.modification_date,
			order_date = EXCLUDED.order_date`,
		o.ID, o.Title, o.Status, o.Recurring, o.Total, o.TotalPaid, o.TotalDue,
		o.RefundTotal, o.Notes, o.OrderType, o.SourceType, o.InvoiceNumber,
		o.ContactID, o.LeadAffiliateID, o.SalesAffiliateID,
		o.AllowPayment, o.AllowPaypal, o.CreationDate, o.ModificationDate, o.OrderDate)
	if err != nil {
		return wrapExec("upsert order", err)
	}

	if o.PaymentPlan != nil {
		pp := o.PaymentPlan
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO payment_plans (
				order_id, auto_charge, credit_card_id, days_between_payments,
				initial_payment_amount, initial_payment_date, number_of_payments,
				merchant_account_id, plan_start_date, payment_method_id,
				max_charge_attempts, days_between_retries
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (order_id) DO UPDATE SET
				auto_charge = EXCLUDED.auto_charge,
				credit_card_id = EXCLUDED.credit_card_id,
				days_between_payments = EXCLUDED.days_between_payments,
				initial_payment_amount = EXCLUDED.initial_payment_amount,
				initial_payment_date = EXCLUDED.initial_payment_date,
				number_of_payments = EXCLUDED.number_of_payments,
				merchant_account_id = EXCLUDED.merchant_account_id,
				plan_start_date = EXCLUDED.plan_start_date,
				payment_method_id = EXCLUDED.payment_method_id,
				max_charge_attempts = EXCLUDED.max_charge_attempts,
				days_between_retries = EXCLUDED.days_between_retries`,
			o.ID, pp.AutoCharge, nullableID(pp.CreditCardID), pp.DaysBetweenPayments,
			pp.InitialPaymentAmount, pp.InitialPaymentDate, pp.NumberOfPayments,
			nullableID(pp.MerchantAccountID), pp.PlanStartDate, pp.PaymentMethodID,
			pp.MaxChargeAttempts, pp.DaysBetweenRetries); err != nil {
			return wrapExec("upsert payment plan", err)
		}
	}

	for _, table := range []string{"order_items", "order_payments", "order_transactions", "shipping_information"} {
		if _, err := uow.tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE order_id = $1", table), o.ID); err != nil {
			return wrapExec("clear "+table, err)
		}
	}
	for _, it := range o.Items {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, description, type, quantity, price, cost, discount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			it.ID, o.ID, nullableID(it.ProductID), it.Name, it.Description, it.Type,
			it.Quantity, it.Price, it.Cost, it.Discount); err != nil {
			return wrapExec("insert order item", err)
		}
	}
	for _, p := range o.Payments {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO order_payments (id, order_id, invoice_id, amount, pay_status, pay_time, payment_id, note, skip_commission, refund_invoice_payment_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, o.ID, p.InvoiceID, p.Amount, p.PayStatus, p.PayTime,
			p.PaymentID, p.Note, p.SkipCommission, p.RefundInvoicePaymentID); err != nil {
			return wrapExec("insert order payment", err)
		}
	}
	for _, t := range o.Transactions {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO order_transactions (id, order_id, contact_id, amount, currency, gateway, gateway_account_name, payment_date, status, test_transaction, type, errors)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			t.ID, o.ID, nullableID(t.ContactID), t.Amount, t.Currency, t.Gateway,
			t.GatewayAccountName, t.PaymentDate, t.Status, t.TestTransaction, t.Type, t.Errors); err != nil {
			return wrapExec("insert order transaction", err)
		}
	}
	if o.ShippingInformation != nil {
		sh := o.ShippingInformation
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO shipping_information (order_id, first_name, last_name, company, street1, street2, city, state, zip, country, phone, invoice_to_company)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			o.ID, sh.FirstName, sh.LastName, sh.Company, sh.Street1, sh.Street2,
			sh.City, sh.State, sh.Zip, sh.Country, sh.Phone, sh.InvoiceToCompany); err != nil {
			return wrapExec("insert shipping information", err)
		}
	}

	return uow.Commit()
}

// UpsertAffiliate writes the affiliate row and replaces its commission
// payments and clawbacks.
func (s *Store) UpsertAffiliate(ctx context.Context, a *domain.Affiliate) error {
	uow, err := s.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	_, err = uow.tx.ExecContext(ctx, `
		INSERT INTO affiliates (
			id, contact_id, parent_id, status, code, name, email, company,
			website, phone, city, state, postal_code, country, tax_id,
			payment_email, notify_on_lead, notify_on_sale, track_leads_for
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			contact_id = EXCLUDED.contact_id,
			parent_id = EXCLUDED.parent_id,
			status = EXCLUDED.status,
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country,
			tax_id = EXCLUDED.tax_id,
			payment_email = EXCLUDED.payment_email,
			notify_on_lead = EXCLUDED.notify_on_lead,
			notify_on_sale = EXCLUDED.notify_on_sale,
			track_leads_for = EXCLUDED.track_leads_for`,
		a.ID, nullableID(a.ContactID), nullableID(a.ParentID), a.Status, a.Code,
		a.Name, a.Email, a.Company, a.Website, a.Phone, a.City, a.State,
		a.PostalCode, a.Country, a.TaxID, a.PaymentEmail,
		a.NotifyOnLead, a.NotifyOnSale, a.TrackLeadsFor)
	if err != nil {
		return wrapExec("upsert affiliate", err)
	}

	for _, table := range []string{"affiliate_payments", "affiliate_clawbacks"} {
		if _, err := uow.tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE affiliate_id = $1", table), a.ID); err != nil {
			return wrapExec("clear "+table, err)
		}
	}
	for _, p := range a.Payments {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO affiliate_payments (id, affiliate_id, amount, date, notes, type)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, a.ID, p.Amount, p.Date, p.Notes, p.Type); err != nil {
			return wrapExec("insert affiliate payment", err)
		}
	}
	for _, cb := range a.Clawbacks {
		if _, err := uow.tx.ExecContext(ctx, `
			INSERT INTO affiliate_clawbacks (id, affiliate_id, amount, contact_id, date, description, family_name, given_name, invoice_id, product_name, subtotal, sale_affiliate_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			cb.ID, a.ID, cb.Amount, nullableID(cb.ContactID), cb.Date, cb.Description,
			cb.FamilyName, cb.GivenName, cb.InvoiceID, cb.ProductName,
			cb.Subtotal, nullableID(cb.SaleAffiliateID)); err != nil {
			return wrapExec("insert affiliate clawback", err)
		}
	}

	return uow.Commit()
}

func (s *Store) UpsertOpportunity(ctx context.Context, o *domain.Opportunity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opportunities (
			id, title, contact_id, stage_id, stage_name, user_id,
			estimated_close_date, projected_revenue_high, projected_revenue_low,
			opportunity_notes, next_action_date, next_action_notes,
			date_created, last_updated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			contact_id = EXCLUDED.contact_id,
			stage_id = EXCLUDED.stage_id,
			stage_name = EXCLUDED.stage_name,
			user_id = EXCLUDED.user_id,
			estimated_close_date = EXCLUDED.estimated_close_date,
			projected_revenue_high = EXCLUDED.projected_revenue_high,
			projected_revenue_low = EXCLUDED.projected_revenue_low,
			opportunity_notes = EXCLUDED.opportunity_notes,
			next_action_date = EXCLUDED.next_action_date,
			next_action_notes = EXCLUDED.next_action_notes,
			date_created = EXCLUDED.date_created,
			last_updated = EXCLUDED.last_updated`,
		o.ID, o.Title, nullableID(o.ContactID), o.StageID, o.StageName, o.UserID,
		o.EstimatedCloseDate, o.ProjectedRevenueHigh, o.ProjectedRevenueLow,
		o.OpportunityNotes, o.NextActionDate, o.NextActionNotes,
		o.DateCreated, o.LastUpdated)
	return wrapExec("upsert opportunity", err)
}

func (s *Store) UpsertTask(ctx context.Context, t *domain.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, title, description, type, priority, status, contact_id, user_id,
			completed, completion_date, creation_date, due_date,
			modification_date, remind_time, url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			priority = EXCLUDED.priority,
			status = EXCLUDED.status,
			contact_id = EXCLUDED.contact_id,
			user_id = EXCLUDED.user_id,
			completed = EXCLUDED.completed,
			completion_date = EXCLUDED.completion_date,
			creation_date = EXCLUDED.creation_date,
			due_date = EXCLUDED.due_date,
			modification_date = EXCLUDED.modification_date,
			remind_time = EXCLUDED.remind_time,
			url = EXCLUDED.url`,
		t.ID, t.Title, t.Description, t.Type, t.Priority, t.Status,
		nullableID(t.ContactID), t.UserID, t.Completed, t.CompletionDate,
		t.CreationDate, t.DueDate, t.ModificationDate, t.RemindTime, t.URL)
	return wrapExec("upsert task", err)
}

func (s *Store) UpsertNote(ctx context.Context, n *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, body, type, contact_id, user_id, date_created, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			type = EXCLUDED.type,
			contact_id = EXCLUDED.contact_id,
			user_id = EXCLUDED.user_id,
			date_created = EXCLUDED.date_created,
			last_updated = EXCLUDED.last_updated`,
		n.ID, n.Title, n.Body, n.Type, nullableID(n.ContactID), n.UserID,
		n.DateCreated, n.LastUpdated)
	return wrapExec("upsert note", err)
}

func (s *Store) UpsertCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (
			id, name, goals, created_by, published_status, published_date,
			time_zone, date_created, active_contact_count, completed_contact_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			goals = EXCLUDED.goals,
			created_by = EXCLUDED.created_by,
			published_status = EXCLUDED.published_status,
			published_date = EXCLUDED.published_date,
			time_zone = EXCLUDED.time_zone,
			date_created = EXCLUDED.date_created,
			active_contact_count = EXCLUDED.active_contact_count,
			completed_contact_count = EXCLUDED.completed_contact_count`,
		c.ID, c.Name, c.Goals, c.CreatedBy, c.PublishedStatus, c.PublishedDate,
		c.TimeZone, c.DateCreated, c.ActiveContactCount, c.CompletedContactCount)
	return wrapExec("upsert campaign", err)
}

func (s *Store) UpsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, contact_id, product_id, subscription_plan_id, payment_gateway_id,
			credit_card_id, status, billing_cycle, billing_amount, active,
			auto_charge, quantity, next_bill_date, start_date, end_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			contact_id = EXCLUDED.contact_id,
			product_id = EXCLUDED.product_id,
			subscription_plan_id = EXCLUDED.subscription_plan_id,
			payment_gateway_id = EXCLUDED.payment_gateway_id,
			credit_card_id = EXCLUDED.credit_card_id,
			status = EXCLUDED.status,
			billing_cycle = EXCLUDED.billing_cycle,
			billing_amount = EXCLUDED.billing_amount,
			active = EXCLUDED.active,
			auto_charge = EXCLUDED.auto_charge,
			quantity = EXCLUDED.quantity,
			next_bill_date = EXCLUDED.next_bill_date,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date`,
		sub.ID, nullableID(sub.ContactID), nullableID(sub.ProductID),
		nullableID(sub.SubscriptionPlanID), nullableID(sub.PaymentGatewayID),
		nullableID(sub.CreditCardID), sub.Status, sub.BillingCycle,
		sub.BillingAmount, sub.Active, sub.AutoCharge, sub.Quantity,
		sub.NextBillDate, sub.StartDate, sub.EndDate)
	return wrapExec("upsert subscription", err)
}

func (s *Store) UpsertCustomField(ctx context.Context, f *domain.CustomField) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_fields (
			id, name, label, field_name, type, record_type, default_value, options
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			label = EXCLUDED.label,
			field_name = EXCLUDED.field_name,
			type = EXCLUDED.type,
			record_type = EXCLUDED.record_type,
			default_value = EXCLUDED.default_value,
			options = EXCLUDED.options`,
		f.ID, f.Name, f.Label, f.FieldName, string(f.Type), f.RecordType,
		f.DefaultValue, f.Options)
	return wrapExec("upsert custom field", err)
}

// nullableID maps the upstream's "0 means absent" id convention onto SQL NULL
// so foreign keys never point at id 0.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
