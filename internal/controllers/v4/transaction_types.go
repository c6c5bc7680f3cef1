package v4

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/types"
	ll_uuid "github.com/ledgerlight/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// TransactionEditable represents all values for a Transaction that can be updated by the API
type TransactionEditable struct {
	OwnerID     uuid.UUID         `json:"ownerId" example:"d2be43f9-ffb8-4db9-a40b-2d77ae646a30"`                                 // The tenant this transaction belongs to
	Date        types.Date        `json:"date" example:"2024-02-29"`                                                             // The day the transaction took place
	Description string            `json:"description" example:"Weekly groceries"`                                                // What the transaction was for
	Amount      decimal.Decimal   `json:"amount" example:"14.03" minimum:"0.00000001" maximum:"999999999999" multipleOf:"0.001"` // The amount of the transaction
	Direction   models.Direction  `json:"direction" example:"outflow" default:"outflow"`                                         // Whether money went out or came in
	Source      models.Source     `json:"source" example:"manual" default:"manual"`                                              // How this transaction was created
	LabelID     *uuid.UUID        `json:"labelId" example:"2b70c8c6-d1f1-4c2b-b096-9ff9e5f43813"`                                // ID of the label, nil if unlabeled
	Category    string            `json:"category" example:"Food"`                                                               // Legacy category name
	Subcategory string            `json:"subcategory" example:"Groceries"`                                                       // Legacy subcategory name
	Account     string            `json:"account" example:"Main checking"`                                                       // The account the money moved on
	Note        string            `json:"note" example:"Bought extra cheese"`                                                    // A note on the transaction
}

// model returns the models.Transaction for the editable fields
func (editable TransactionEditable) model() models.Transaction {
	return models.Transaction{
		OwnerID:     editable.OwnerID,
		Date:        editable.Date,
		Description: editable.Description,
		Amount:      editable.Amount,
		Direction:   editable.Direction,
		Source:      editable.Source,
		LabelID:     editable.LabelID,
		Category:    editable.Category,
		Subcategory: editable.Subcategory,
		Account:     editable.Account,
		Note:        editable.Note,
	}
}

type TransactionLinks struct {
	Self string `json:"self" example:"https://example.com/api/v4/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction itself
}

// Transaction is the API representation of a Transaction
type Transaction struct {
	models.DefaultModel
	TransactionEditable
	Links TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			OwnerID:     model.OwnerID,
			Date:        model.Date,
			Description: model.Description,
			Amount:      model.Amount,
			Direction:   model.Direction,
			Source:      model.Source,
			LabelID:     model.LabelID,
			Category:    model.Category,
			Subcategory: model.Subcategory,
			Account:     model.Account,
			Note:        model.Note,
		},
		Links: TransactionLinks{
			Self: fmt.Sprintf("%s/v4/transactions/%s", url, model.ID),
		},
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Data  []TransactionResponse `json:"data"`                                                          // List of created transactions
}

func (t *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransactionResponse{Error: &s})

	// The final status code is the highest one that occurs
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type TransactionResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Data  *Transaction `json:"data"`                                                          // The transaction data, if creation was successful
}

type TransactionQueryFilter struct {
	Owner       ll_uuid.UUID     `form:"owner" filterField:"false"`       // Filter by the owning tenant
	Date        types.Date       `form:"date" filterField:"false"`        // Date of the transaction
	FromDate    types.Date       `form:"fromDate" filterField:"false"`    // From this date
	UntilDate   types.Date       `form:"untilDate" filterField:"false"`   // Until this date
	Direction   models.Direction `form:"direction"`                       // Filter by direction
	Source      models.Source    `form:"source"`                          // Filter by source
	LabelID     ll_uuid.UUID     `form:"label" filterField:"false"`       // Filter by label ID
	Category    string           `form:"category"`                        // Filter by legacy category
	Account     string           `form:"account"`                         // Filter by account
	Amount      decimal.Decimal  `form:"amount" filterField:"false"`      // Filter for exact amount
	Description string           `form:"description" filterField:"false"` // Filter by description
	Note        string           `form:"note" filterField:"false"`        // Filter by note
	Search      string           `form:"search" filterField:"false"`      // By string in description or note
	Offset      uint             `form:"offset" filterField:"false"`      // The offset of the first Transaction returned. Defaults to 0.
	Limit       int              `form:"limit" filterField:"false"`       // Maximum number of Transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) model() models.Transaction {
	return models.Transaction{
		Direction: f.Direction,
		Source:    f.Source,
		Category:  f.Category,
		Account:   f.Account,
	}
}
