package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Direction of a ledger transaction relative to the owner.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// Source marks how a ledger transaction came into existence.
type Source string

const (
	SourceManual    Source = "manual"
	SourceRecurring Source = "recurring"
	SourceImport    Source = "import"
)

// Transaction is a single ledger entry of a tenant.
type Transaction struct {
	DefaultModel
	OwnerID     uuid.UUID `gorm:"index"`
	Date        types.Date
	Description string
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Direction   Direction
	Source      Source
	LabelID     *uuid.UUID
	Label       Label `json:"-"`
	Category    string
	Subcategory string
	Account     string
	Note        string
}

var ErrTransactionAmountNegative = errors.New("transaction amounts must not be negative")

// BeforeSave
//   - defaults direction and source
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Description = strings.TrimSpace(t.Description)
	t.Note = strings.TrimSpace(t.Note)
	t.Category = strings.TrimSpace(t.Category)
	t.Subcategory = strings.TrimSpace(t.Subcategory)
	t.Account = strings.TrimSpace(t.Account)

	// Ensure that the Label ID is nil and not a pointer to a nil UUID
	// when it is set
	if t.LabelID != nil && *t.LabelID == uuid.Nil {
		t.LabelID = nil
	}

	if t.Direction == "" {
		t.Direction = Outflow
	}

	if t.Source == "" {
		t.Source = SourceManual
	}

	if t.Date.IsZero() {
		t.Date = types.Today()
	}

	if t.Amount.IsNegative() {
		return ErrTransactionAmountNegative
	}

	return nil
}
