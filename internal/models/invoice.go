package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/recurrence"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus is the lifecycle state of an invoice.
//
// Except for draft and cancelled, which are explicit user actions, the
// status is always derived from the payment sum, the due date and the sent
// date, see UpdateStatus.
type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "draft"
	StatusSent          InvoiceStatus = "sent"
	StatusPartiallyPaid InvoiceStatus = "partially_paid"
	StatusPaid          InvoiceStatus = "paid"
	StatusOverdue       InvoiceStatus = "overdue"
	StatusCancelled     InvoiceStatus = "cancelled"
)

// Invoice is a bill issued to a client.
type Invoice struct {
	DefaultModel
	OwnerID    uuid.UUID `gorm:"index"`
	Number     string
	ClientName string
	Note       string

	Date     types.Date
	DueDate  types.Date
	SentDate types.Date
	PaidDate types.Date

	Status InvoiceStatus

	Subtotal   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TaxRate    decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // percent
	TaxAmount  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Discount   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Total      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	PaidAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	// Recurrence template fields. A paid recurring invoice spawns its
	// successor in the same recurring group.
	IsRecurring         bool
	RecurringGroupID    *uuid.UUID `gorm:"index"`
	RecurrenceFrequency recurrence.Frequency

	Items    []InvoiceItem    `json:"-"`
	Payments []InvoicePayment `json:"-"`
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	DefaultModel
	InvoiceID   uuid.UUID `gorm:"index"`
	Position    uint
	Description string
	Quantity    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	UnitPrice   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

// BeforeSave keeps the line amount consistent with quantity and unit price.
func (i *InvoiceItem) BeforeSave(_ *gorm.DB) error {
	i.Description = strings.TrimSpace(i.Description)
	i.Amount = i.Quantity.Mul(i.UnitPrice).Round(2)

	return nil
}

// InvoicePayment is money received against an invoice.
type InvoicePayment struct {
	DefaultModel
	InvoiceID uuid.UUID `gorm:"index"`
	Amount    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Date      types.Date
	Method    string
}

func (p *InvoicePayment) BeforeSave(_ *gorm.DB) error {
	p.Method = strings.TrimSpace(p.Method)

	if p.Date.IsZero() {
		p.Date = types.Today()
	}

	return nil
}

// BeforeCreate seeds the recurrence group of a template invoice. The first
// invoice of a series is the root of its own group.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	_ = i.DefaultModel.BeforeCreate(tx)

	if i.IsRecurring && i.RecurringGroupID == nil {
		id := i.ID
		i.RecurringGroupID = &id
	}

	return nil
}

func (i *Invoice) BeforeSave(_ *gorm.DB) error {
	i.Number = strings.TrimSpace(i.Number)
	i.ClientName = strings.TrimSpace(i.ClientName)
	i.Note = strings.TrimSpace(i.Note)

	if i.Status == "" {
		i.Status = StatusDraft
	}

	if i.Date.IsZero() {
		i.Date = types.Today()
	}

	return nil
}

// RecalculateTotals recomputes the invoice amounts from its line items and
// persists them.
//
// The identity is total = subtotal + tax - discount, with
// tax = subtotal * rate / 100 rounded to the cent.
func (i *Invoice) RecalculateTotals(db *gorm.DB) error {
	var subtotal decimal.NullDecimal
	err := db.Model(&InvoiceItem{}).
		Select("SUM(amount)").
		Where("invoice_id = ?", i.ID).
		Find(&subtotal).Error
	if err != nil {
		return err
	}

	i.Subtotal = decimal.Zero
	if subtotal.Valid {
		i.Subtotal = subtotal.Decimal
	}

	i.TaxAmount = i.Subtotal.Mul(i.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	i.Total = i.Subtotal.Add(i.TaxAmount).Sub(i.Discount)

	return db.Model(i).
		Select("subtotal", "tax_amount", "total").
		Updates(map[string]any{
			"subtotal":   i.Subtotal,
			"tax_amount": i.TaxAmount,
			"total":      i.Total,
		}).Error
}

// UpdateStatus derives the invoice status from the facts and persists it.
//
// The branches form a strict priority chain, the first match wins:
// cancelled is terminal, full payment wins over everything else, partial
// payment clears a stale paid date, drafts are never transitioned by date or
// payment logic, then overdue, then sent.
func (i *Invoice) UpdateStatus(db *gorm.DB, today types.Date) error {
	if i.Status == StatusCancelled {
		return nil
	}

	var paid decimal.NullDecimal
	err := db.Model(&InvoicePayment{}).
		Select("SUM(amount)").
		Where("invoice_id = ?", i.ID).
		Find(&paid).Error
	if err != nil {
		return err
	}

	i.PaidAmount = decimal.Zero
	if paid.Valid {
		i.PaidAmount = paid.Decimal
	}

	switch {
	// A zero total never counts as paid, otherwise every empty draft
	// would immediately complete
	case i.Total.IsPositive() && i.PaidAmount.GreaterThanOrEqual(i.Total):
		i.Status = StatusPaid
		// Keep the original payment completion date on recomputation
		if i.PaidDate.IsZero() {
			i.PaidDate = today
		}
	case i.PaidAmount.IsPositive():
		i.Status = StatusPartiallyPaid
		i.PaidDate = types.Date{}
	case i.Status == StatusDraft:
		// Drafts stay drafts until explicitly sent
	case !i.DueDate.IsZero() && i.DueDate.Before(today):
		i.Status = StatusOverdue
	case !i.SentDate.IsZero():
		i.Status = StatusSent
	}

	return db.Model(i).
		Select("status", "paid_amount", "paid_date").
		Updates(map[string]any{
			"status":      i.Status,
			"paid_amount": i.PaidAmount,
			"paid_date":   i.PaidDate,
		}).Error
}

// invoiceAdvanceDays is the fixed advance per frequency for recurring
// invoices. Unlike budget periods this is not calendar aware, monthly
// invoices drift across months of different lengths.
var invoiceAdvanceDays = map[recurrence.Frequency]int{
	recurrence.Monthly:   30,
	recurrence.Quarterly: 90,
	recurrence.Yearly:    365,
}

// MaterializeNext creates the successor of a paid recurring invoice as a new
// draft, copying amounts and line items verbatim.
//
// Nothing happens while the invoice is unpaid, before the next date is
// reached, or when the successor already exists. The returned invoice is nil
// in all of these cases.
func (i *Invoice) MaterializeNext(db *gorm.DB, today types.Date) (*Invoice, error) {
	if !i.IsRecurring || i.RecurringGroupID == nil || i.RecurrenceFrequency == "" || i.Status != StatusPaid {
		return nil, nil
	}

	days, ok := invoiceAdvanceDays[i.RecurrenceFrequency]
	if !ok {
		days = invoiceAdvanceDays[recurrence.Monthly]
	}

	next := i.Date.AddDate(0, 0, days)
	if next.After(today) {
		return nil, nil
	}

	// The successor keeps the payment term of its predecessor
	var due types.Date
	if !i.DueDate.IsZero() {
		due = next.AddDate(0, 0, i.Date.DaysUntil(i.DueDate))
	}

	// The existence check and the create commit as a single transaction so
	// that overlapping runs never create the same successor twice
	var successor *Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Invoice{}).
			Where("recurring_group_id = ? AND date = ?", *i.RecurringGroupID, next).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return nil
		}

		var items []InvoiceItem
		err = tx.Where(&InvoiceItem{InvoiceID: i.ID}).Order("position ASC").Find(&items).Error
		if err != nil {
			return err
		}

		draft := Invoice{
			OwnerID:    i.OwnerID,
			ClientName: i.ClientName,
			Note:       i.Note,
			Date:       next,
			DueDate:    due,
			Status:     StatusDraft,
			// Amounts are copied, not recomputed from current prices
			Subtotal:  i.Subtotal,
			TaxRate:   i.TaxRate,
			TaxAmount: i.TaxAmount,
			Discount:  i.Discount,
			Total:     i.Total,

			IsRecurring:         true,
			RecurringGroupID:    i.RecurringGroupID,
			RecurrenceFrequency: i.RecurrenceFrequency,
		}

		for _, item := range items {
			draft.Items = append(draft.Items, InvoiceItem{
				Position:    item.Position,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Amount:      item.Amount,
			})
		}

		err = tx.Create(&draft).Error
		if err != nil {
			return err
		}

		successor = &draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	return successor, nil
}
