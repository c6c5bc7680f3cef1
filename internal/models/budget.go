package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/period"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget caps the spending for a set of labels (or a legacy category) over a
// period. A budget with IsRecurring set additionally acts as a template for
// generating its future periods.
type Budget struct {
	DefaultModel
	OwnerID uuid.UUID `gorm:"index"`
	Name    string
	Note    string
	Amount  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Period  period.Period

	// Explicit range, only used when Period is custom
	StartDate types.Date
	EndDate   types.Date

	// Labels take precedence over the legacy category for usage computation
	Labels   []Label `gorm:"many2many:budget_labels" json:"-"`
	Category string

	Archived bool

	// Recurrence template fields
	IsRecurring      bool
	RecurrenceCount  int
	RecurringGroupID *uuid.UUID `gorm:"index"`
	LastGenerated    types.Date // start of the most recently generated period
}

var (
	ErrBudgetAmountNegative       = errors.New("budget amounts must not be negative")
	ErrBudgetCustomPeriodNoDates  = errors.New("budgets with a custom period need both a start and an end date")
	ErrBudgetCustomPeriodInverted = errors.New("the start date of a custom period must not be after its end date")
)

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Note = strings.TrimSpace(b.Note)
	b.Category = strings.TrimSpace(b.Category)

	if b.Amount.IsNegative() {
		return ErrBudgetAmountNegative
	}

	return nil
}

// BeforeCreate rejects custom periods without explicit dates. Catching the
// mistake here means the fallback to the current month in the usage
// computation only ever applies to rows that predate this check.
func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	_ = b.DefaultModel.BeforeCreate(tx)

	if b.Period == period.Custom {
		if b.StartDate.IsZero() || b.EndDate.IsZero() {
			return ErrBudgetCustomPeriodNoDates
		}

		if b.StartDate.After(b.EndDate) {
			return ErrBudgetCustomPeriodInverted
		}
	}

	return nil
}

// MaterializeRecurring generates the future period instances of a recurring
// budget template and returns how many new budgets were created.
//
// Exactly RecurrenceCount periods are generated over the lifetime of the
// template, starting at the period after the template's own. Periods up to
// the checkpoint are skipped, so invoking this again after a complete run
// creates nothing. The checkpoint advances after every period, also when the
// period was skipped because a matching budget already exists.
func (b *Budget) MaterializeRecurring(db *gorm.DB) (int, error) {
	if !b.IsRecurring || b.Period == period.Custom || b.RecurrenceCount <= 0 {
		return 0, nil
	}

	// The first generated period is the one after the template's own period
	anchor := b.StartDate
	if anchor.IsZero() {
		anchor = types.DateOf(b.CreatedAt)
	}
	currentStart, _ := period.Bounds(b.Period, anchor, types.Date{}, types.Date{})
	start := period.NextStart(currentStart, b.Period)

	// Generated instances reference the template through the recurring group
	group := b.ID
	if b.RecurringGroupID != nil {
		group = *b.RecurringGroupID
	}

	var labels []Label
	err := db.Model(b).Association("Labels").Find(&labels)
	if err != nil {
		return 0, err
	}

	created := 0
	for n := 0; n < b.RecurrenceCount; n++ {
		if b.LastGenerated.IsZero() || start.After(b.LastGenerated) {
			// One period commits as a single transaction so that
			// overlapping runs never create the same period twice
			var madeNew bool
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				madeNew, err = b.materializePeriod(tx, start, group, labels)
				if err != nil {
					return err
				}

				return tx.Model(b).
					Where("last_generated < ?", start).
					Update("last_generated", start).Error
			})
			if err != nil {
				return created, err
			}
			if madeNew {
				created++
			}

			b.LastGenerated = start
		}

		start = period.NextStart(start, b.Period)
	}

	// All periods are generated, the template is done recurring
	err = db.Model(b).Update("is_recurring", false).Error
	if err != nil {
		return created, err
	}
	b.IsRecurring = false

	return created, nil
}

// materializePeriod creates the budget instance for a single period unless a
// matching one already exists.
func (b *Budget) materializePeriod(db *gorm.DB, start types.Date, group uuid.UUID, labels []Label) (bool, error) {
	end := period.End(start, b.Period)

	var count int64
	err := db.Model(&Budget{}).
		Where("owner_id = ? AND name = ? AND period = ? AND start_date = ? AND end_date = ?",
			b.OwnerID, b.Name, period.Custom, start, end).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	if count > 0 {
		return false, nil
	}

	instance := Budget{
		OwnerID:          b.OwnerID,
		Name:             b.Name,
		Note:             b.Note,
		Amount:           b.Amount,
		Period:           period.Custom,
		StartDate:        start,
		EndDate:          end,
		Labels:           labels,
		Category:         b.Category,
		RecurringGroupID: &group,
		// Generated instances do not recurse themselves
		IsRecurring: false,
	}

	err = db.Create(&instance).Error
	if err != nil {
		return false, err
	}

	return true, nil
}
