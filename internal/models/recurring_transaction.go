package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/recurrence"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultHorizonDays is how far into the future recurring transactions are
// materialized.
const DefaultHorizonDays = 30

// RecurringTransaction is a template that materializes into ledger
// transactions on a fixed cadence.
type RecurringTransaction struct {
	DefaultModel
	OwnerID     uuid.UUID `gorm:"index"`
	Description string
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Direction   Direction
	Frequency   recurrence.Frequency
	StartDate   types.Date
	EndDate     types.Date

	LastGenerated types.Date // checkpoint: most recent materialized occurrence
	Active        bool

	LabelID     *uuid.UUID
	Label       Label `json:"-"`
	Category    string
	Subcategory string
	Account     string
}

func (r *RecurringTransaction) BeforeSave(_ *gorm.DB) error {
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Subcategory = strings.TrimSpace(r.Subcategory)
	r.Account = strings.TrimSpace(r.Account)

	if r.LabelID != nil && *r.LabelID == uuid.Nil {
		r.LabelID = nil
	}

	if r.StartDate.IsZero() {
		r.StartDate = types.Today()
	}

	if r.Amount.IsNegative() {
		return ErrTransactionAmountNegative
	}

	return nil
}

// Materialize creates ledger transactions for all due occurrences of the
// template up to today plus horizonDays and returns how many were created.
//
// An occurrence is only created when no recurring ledger entry with the same
// owner, date, description, amount and direction exists yet. The existence
// check, the create and the checkpoint advance for one occurrence commit as
// a single database transaction: overlapping runs never create the same
// occurrence twice, and a write failure leaves the checkpoint on the last
// good occurrence so the next run resumes exactly there.
func (r *RecurringTransaction) Materialize(db *gorm.DB, today types.Date, horizonDays int) (int, error) {
	horizon := today.AddDate(0, 0, horizonDays)
	due := recurrence.DueOccurrences(r.StartDate, r.Frequency, r.LastGenerated, r.EndDate, horizon)

	created := 0
	for _, date := range due {
		var madeNew bool
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			madeNew, err = r.materializeOccurrence(tx, date)
			if err != nil {
				return err
			}

			// The checkpoint only ever moves forward
			return tx.Model(r).
				Where("last_generated < ?", date).
				Update("last_generated", date).Error
		})
		if err != nil {
			return created, err
		}
		if madeNew {
			created++
		}

		r.LastGenerated = date
	}

	// Templates past their end date stop being picked up
	if r.Active && !r.EndDate.IsZero() && r.EndDate.Before(today) {
		err := db.Model(r).Update("active", false).Error
		if err != nil {
			return created, err
		}
		r.Active = false
	}

	return created, nil
}

func (r *RecurringTransaction) materializeOccurrence(db *gorm.DB, date types.Date) (bool, error) {
	var count int64
	err := db.Model(&Transaction{}).
		Where("owner_id = ? AND date = ? AND description = ? AND amount = ? AND direction = ? AND source = ?",
			r.OwnerID, date, r.Description, r.Amount, r.Direction, SourceRecurring).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	if count > 0 {
		return false, nil
	}

	// The legacy category falls back to the label name so that category
	// based reports keep working for labeled templates
	category := r.Category
	if category == "" && r.LabelID != nil {
		var label Label
		err := db.First(&label, *r.LabelID).Error
		if err != nil {
			return false, err
		}
		category = label.Name
	}

	transaction := Transaction{
		OwnerID:     r.OwnerID,
		Date:        date,
		Description: r.Description,
		Amount:      r.Amount,
		Direction:   r.Direction,
		Source:      SourceRecurring,
		LabelID:     r.LabelID,
		Category:    category,
		Subcategory: r.Subcategory,
		Account:     r.Account,
	}

	err = db.Create(&transaction).Error
	if err != nil {
		return false, err
	}

	return true, nil
}
