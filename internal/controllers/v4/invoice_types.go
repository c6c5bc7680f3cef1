package v4

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/recurrence"
	"github.com/ledgerlight/backend/internal/types"
	ll_uuid "github.com/ledgerlight/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemEditable represents a single line item of an invoice
type InvoiceItemEditable struct {
	Position    uint            `json:"position" example:"1"`                    // Position of the item on the invoice
	Description string          `json:"description" example:"Consulting, July"`  // What the item is for
	Quantity    decimal.Decimal `json:"quantity" example:"8"`                    // How many units
	UnitPrice   decimal.Decimal `json:"unitPrice" example:"125"`                 // Price per unit
}

func (editable InvoiceItemEditable) model() models.InvoiceItem {
	return models.InvoiceItem{
		Position:    editable.Position,
		Description: editable.Description,
		Quantity:    editable.Quantity,
		UnitPrice:   editable.UnitPrice,
	}
}

// InvoiceEditable represents all values for an Invoice that can be updated by the API
type InvoiceEditable struct {
	OwnerID             uuid.UUID             `json:"ownerId" example:"d2be43f9-ffb8-4db9-a40b-2d77ae646a30"`  // The tenant this invoice belongs to
	Number              string                `json:"number" example:"2024-0042"`                              // The invoice number
	ClientName          string                `json:"clientName" example:"ACME GmbH"`                          // Who the invoice is for
	Note                string                `json:"note" example:"Payable within 14 days"`                   // A note on the invoice
	Date                types.Date            `json:"date" example:"2024-07-01"`                               // Issue date
	DueDate             types.Date            `json:"dueDate" example:"2024-07-15"`                            // Due date, zero for none
	TaxRate             decimal.Decimal       `json:"taxRate" example:"19"`                                    // Tax rate in percent
	Discount            decimal.Decimal       `json:"discount" example:"50"`                                   // Absolute discount on the total
	IsRecurring         bool                  `json:"isRecurring" example:"false" default:"false"`             // Is this invoice regenerated once paid?
	RecurrenceFrequency recurrence.Frequency  `json:"recurrenceFrequency" example:"monthly"`                   // How often a successor is generated
	Items               []InvoiceItemEditable `json:"items"`                                                   // The line items
}

func (editable InvoiceEditable) model() models.Invoice {
	invoice := models.Invoice{
		OwnerID:             editable.OwnerID,
		Number:              editable.Number,
		ClientName:          editable.ClientName,
		Note:                editable.Note,
		Date:                editable.Date,
		DueDate:             editable.DueDate,
		TaxRate:             editable.TaxRate,
		Discount:            editable.Discount,
		IsRecurring:         editable.IsRecurring,
		RecurrenceFrequency: editable.RecurrenceFrequency,
	}

	for _, item := range editable.Items {
		invoice.Items = append(invoice.Items, item.model())
	}

	return invoice
}

// InvoicePaymentEditable represents a payment recorded against an invoice
type InvoicePaymentEditable struct {
	Amount decimal.Decimal `json:"amount" example:"575"`           // The amount that was paid
	Date   types.Date      `json:"date" example:"2024-07-10"`      // The day the payment arrived
	Method string          `json:"method" example:"bank_transfer"` // How the payment was made
}

func (editable InvoicePaymentEditable) model() models.InvoicePayment {
	return models.InvoicePayment{
		Amount: editable.Amount,
		Date:   editable.Date,
		Method: editable.Method,
	}
}

type InvoiceLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v4/invoices/8e6e4b6e-4c16-4595-a94e-852ee6e8f2b5"`          // The invoice itself
	Payments string `json:"payments" example:"https://example.com/api/v4/invoices/8e6e4b6e-4c16-4595-a94e-852ee6e8f2b5/payments"` // Payments against the invoice
}

// Invoice is the API representation of an Invoice
type Invoice struct {
	models.DefaultModel
	InvoiceEditable
	Links InvoiceLinks `json:"links"`

	// These fields are computed
	Status           models.InvoiceStatus     `json:"status" example:"sent"`             // Derived payment status
	SentDate         types.Date               `json:"sentDate" example:"2024-07-01"`     // The day the invoice was sent, zero for drafts
	PaidDate         types.Date               `json:"paidDate" example:"2024-07-10"`     // The day the invoice was fully paid
	Subtotal         decimal.Decimal          `json:"subtotal" example:"1000"`           // Sum of the line item amounts
	TaxAmount        decimal.Decimal          `json:"taxAmount" example:"190"`           // Tax on the subtotal
	Total            decimal.Decimal          `json:"total" example:"1140"`              // Subtotal plus tax minus discount
	PaidAmount       decimal.Decimal          `json:"paidAmount" example:"575"`          // Sum of all recorded payments
	RecurringGroupID *uuid.UUID               `json:"recurringGroupId"`                  // The recurrence group this invoice belongs to
	Payments         []InvoicePaymentEditable `json:"payments"`                          // Payments recorded against the invoice
}

func newInvoice(c *gin.Context, model models.Invoice) Invoice {
	url := c.GetString(string(models.DBContextURL))

	items := make([]InvoiceItemEditable, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, InvoiceItemEditable{
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	payments := make([]InvoicePaymentEditable, 0, len(model.Payments))
	for _, payment := range model.Payments {
		payments = append(payments, InvoicePaymentEditable{
			Amount: payment.Amount,
			Date:   payment.Date,
			Method: payment.Method,
		})
	}

	return Invoice{
		DefaultModel:     model.DefaultModel,
		Status:           model.Status,
		SentDate:         model.SentDate,
		PaidDate:         model.PaidDate,
		Subtotal:         model.Subtotal,
		TaxAmount:        model.TaxAmount,
		Total:            model.Total,
		PaidAmount:       model.PaidAmount,
		RecurringGroupID: model.RecurringGroupID,
		Payments:         payments,
		InvoiceEditable: InvoiceEditable{
			OwnerID:             model.OwnerID,
			Number:              model.Number,
			ClientName:          model.ClientName,
			Note:                model.Note,
			Date:                model.Date,
			DueDate:             model.DueDate,
			TaxRate:             model.TaxRate,
			Discount:            model.Discount,
			IsRecurring:         model.IsRecurring,
			RecurrenceFrequency: model.RecurrenceFrequency,
			Items:               items,
		},
		Links: InvoiceLinks{
			Self:     fmt.Sprintf("%s/v4/invoices/%s", url, model.ID),
			Payments: fmt.Sprintf("%s/v4/invoices/%s/payments", url, model.ID),
		},
	}
}

type InvoiceListResponse struct {
	Data       []Invoice   `json:"data"`                                                          // List of invoices
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type InvoiceCreateResponse struct {
	Data  []InvoiceResponse `json:"data"`                                                          // List of created invoices
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

func (t *InvoiceCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, InvoiceResponse{Error: &s})

	// The final status code is the highest one that occurs
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type InvoiceResponse struct {
	Data  *Invoice `json:"data"`                                                          // The invoice data, if creation was successful
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

type InvoiceQueryFilter struct {
	Owner       ll_uuid.UUID         `form:"owner" filterField:"false"`      // Filter by the owning tenant
	Status      models.InvoiceStatus `form:"status"`                         // Filter by status
	ClientName  string               `form:"client" filterField:"false"`     // Filter by client name
	Number      string               `form:"number"`                         // Filter by invoice number
	FromDate    types.Date           `form:"fromDate" filterField:"false"`   // Invoices issued at and after this date
	UntilDate   types.Date           `form:"untilDate" filterField:"false"`  // Invoices issued before and at this date
	IsRecurring bool                 `form:"isRecurring"`                    // Is the invoice a recurrence template?
	Offset      uint                 `form:"offset" filterField:"false"`     // The offset of the first Invoice returned. Defaults to 0.
	Limit       int                  `form:"limit" filterField:"false"`      // Maximum number of Invoices to return. Defaults to 50.
}

func (f InvoiceQueryFilter) model() models.Invoice {
	return models.Invoice{
		Status:      f.Status,
		Number:      f.Number,
		IsRecurring: f.IsRecurring,
	}
}
