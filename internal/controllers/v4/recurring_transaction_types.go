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

// RecurringTransactionEditable represents all values for a RecurringTransaction
// that can be updated by the API
type RecurringTransactionEditable struct {
	OwnerID     uuid.UUID            `json:"ownerId" example:"d2be43f9-ffb8-4db9-a40b-2d77ae646a30"`  // The tenant this template belongs to
	Description string               `json:"description" example:"Rent"`                              // Description copied to generated transactions
	Amount      decimal.Decimal      `json:"amount" example:"850" minimum:"0.00000001"`               // Amount of each generated transaction
	Direction   models.Direction     `json:"direction" example:"outflow" default:"outflow"`           // Direction of each generated transaction
	Frequency   recurrence.Frequency `json:"frequency" example:"monthly"`                             // How often a transaction is generated
	StartDate   types.Date           `json:"startDate" example:"2024-01-31"`                          // Anchor for the occurrence schedule
	EndDate     types.Date           `json:"endDate" example:"2026-01-31"`                            // Last day occurrences may fall on, zero for open end
	Active      bool                 `json:"active" example:"true" default:"true"`                    // Is the template evaluated by the sweep?
	LabelID     *uuid.UUID           `json:"labelId" example:"2b70c8c6-d1f1-4c2b-b096-9ff9e5f43813"`  // Label for generated transactions
	Category    string               `json:"category" example:"Housing"`                              // Legacy category for generated transactions
	Subcategory string               `json:"subcategory" example:"Rent"`                              // Legacy subcategory for generated transactions
	Account     string               `json:"account" example:"Main checking"`                         // Account for generated transactions
}

func (editable RecurringTransactionEditable) model() models.RecurringTransaction {
	return models.RecurringTransaction{
		OwnerID:     editable.OwnerID,
		Description: editable.Description,
		Amount:      editable.Amount,
		Direction:   editable.Direction,
		Frequency:   editable.Frequency,
		StartDate:   editable.StartDate,
		EndDate:     editable.EndDate,
		Active:      editable.Active,
		LabelID:     editable.LabelID,
		Category:    editable.Category,
		Subcategory: editable.Subcategory,
		Account:     editable.Account,
	}
}

type RecurringTransactionLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v4/recurring-transactions/a4a44b5c-55bf-441b-a325-1e50c9e502f7"`             // The template itself
	Materialize  string `json:"materialize" example:"https://example.com/api/v4/recurring-transactions/a4a44b5c-55bf-441b-a325-1e50c9e502f7/materialize"` // Generates the due transactions
	Transactions string `json:"transactions" example:"https://example.com/api/v4/transactions?source=recurring"`                                   // Transactions generated from templates
}

// RecurringTransaction is the API representation of a RecurringTransaction
type RecurringTransaction struct {
	models.DefaultModel
	RecurringTransactionEditable
	Links RecurringTransactionLinks `json:"links"`

	// These fields are computed
	LastGenerated types.Date `json:"lastGenerated" example:"2024-07-01"` // Most recent materialized occurrence
}

func newRecurringTransaction(c *gin.Context, model models.RecurringTransaction) RecurringTransaction {
	url := c.GetString(string(models.DBContextURL))

	return RecurringTransaction{
		DefaultModel:  model.DefaultModel,
		LastGenerated: model.LastGenerated,
		RecurringTransactionEditable: RecurringTransactionEditable{
			OwnerID:     model.OwnerID,
			Description: model.Description,
			Amount:      model.Amount,
			Direction:   model.Direction,
			Frequency:   model.Frequency,
			StartDate:   model.StartDate,
			EndDate:     model.EndDate,
			Active:      model.Active,
			LabelID:     model.LabelID,
			Category:    model.Category,
			Subcategory: model.Subcategory,
			Account:     model.Account,
		},
		Links: RecurringTransactionLinks{
			Self:         fmt.Sprintf("%s/v4/recurring-transactions/%s", url, model.ID),
			Materialize:  fmt.Sprintf("%s/v4/recurring-transactions/%s/materialize", url, model.ID),
			Transactions: fmt.Sprintf("%s/v4/transactions?source=%s", url, models.SourceRecurring),
		},
	}
}

type RecurringTransactionListResponse struct {
	Data       []RecurringTransaction `json:"data"`                                                          // List of recurring transactions
	Error      *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Pagination *Pagination            `json:"pagination"`                                                    // Pagination information
}

type RecurringTransactionCreateResponse struct {
	Data  []RecurringTransactionResponse `json:"data"`                                                          // List of created recurring transactions
	Error *string                        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

func (t *RecurringTransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, RecurringTransactionResponse{Error: &s})

	// The final status code is the highest one that occurs
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type RecurringTransactionResponse struct {
	Data  *RecurringTransaction `json:"data"`                                                          // The template data, if creation was successful
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

type RecurringTransactionQueryFilter struct {
	Owner       ll_uuid.UUID         `form:"owner" filterField:"false"`       // Filter by the owning tenant
	Frequency   recurrence.Frequency `form:"frequency"`                       // Filter by frequency
	Direction   models.Direction     `form:"direction"`                       // Filter by direction
	Active      bool                 `form:"active"`                          // Is the template active?
	Description string               `form:"description" filterField:"false"` // Filter by description
	Search      string               `form:"search" filterField:"false"`      // Search for this text in the description
	Offset      uint                 `form:"offset" filterField:"false"`      // The offset of the first template returned. Defaults to 0.
	Limit       int                  `form:"limit" filterField:"false"`       // Maximum number of templates to return. Defaults to 50.
}

func (f RecurringTransactionQueryFilter) model() models.RecurringTransaction {
	return models.RecurringTransaction{
		Frequency: f.Frequency,
		Direction: f.Direction,
		Active:    f.Active,
	}
}
