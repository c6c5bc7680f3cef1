package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/period"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// BudgetUsage is the derived spending state of a budget over its period.
type BudgetUsage struct {
	Spent       decimal.Decimal `json:"spent" example:"650.00"`
	Remaining   decimal.Decimal `json:"remaining" example:"-150.00"` // negative when the budget is exceeded
	PercentUsed decimal.Decimal `json:"percentUsed" example:"130.0"`
	IsOver      bool            `json:"isOver" example:"true"`
	PeriodStart types.Date      `json:"periodStart" example:"2024-03-01"`
	PeriodEnd   types.Date      `json:"periodEnd" example:"2024-03-31"`
}

// Usage computes the spending against the budget for the period containing
// today.
//
// If the budget has labels, outflows carrying one of them count against it.
// Otherwise outflows matching the legacy category count, and a budget with
// neither has zero spending. The computation never fails on inconsistent
// data: a zero amount yields zero percent, overspending yields a negative
// remainder.
func (b Budget) Usage(db *gorm.DB, today types.Date) (BudgetUsage, error) {
	start, end := period.Bounds(b.Period, today, b.StartDate, b.EndDate)

	spent, err := b.spent(db, start, end)
	if err != nil {
		return BudgetUsage{}, err
	}

	percent := decimal.Zero
	if b.Amount.IsPositive() {
		percent = spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Round(1)
	}

	return BudgetUsage{
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
		PercentUsed: percent,
		IsOver:      spent.GreaterThan(b.Amount),
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

// spent sums the outflows that count against the budget in the given range.
func (b Budget) spent(db *gorm.DB, start, end types.Date) (decimal.Decimal, error) {
	var labelIDs []uuid.UUID
	err := db.Model(&Label{}).
		Joins("JOIN budget_labels ON budget_labels.label_id = labels.id").
		Where("budget_labels.budget_id = ?", b.ID).
		Pluck("labels.id", &labelIDs).Error
	if err != nil {
		return decimal.Zero, err
	}

	q := db.Model(&Transaction{}).
		Select("SUM(amount)").
		Where("owner_id = ?", b.OwnerID).
		Where("direction = ?", Outflow).
		Where("date >= date(?) AND date <= date(?)", start, end)

	switch {
	case len(labelIDs) > 0:
		q = q.Where("label_id IN (?)", labelIDs)
	case b.Category != "":
		q = q.Where("category = ?", b.Category)
	default:
		return decimal.Zero, nil
	}

	var spent decimal.NullDecimal
	err = q.Find(&spent).Error
	if err != nil {
		return decimal.Zero, err
	}

	// If no transactions are found, the value is nil
	if !spent.Valid {
		return decimal.Zero, nil
	}

	return spent.Decimal, nil
}

// BudgetUsageItem is one budget in the portfolio summary.
type BudgetUsageItem struct {
	BudgetID    uuid.UUID       `json:"budgetId" example:"1e777d24-3f5b-4c43-8000-04f65f895578"`
	Name        string          `json:"name" example:"Groceries"`
	Amount      decimal.Decimal `json:"amount" example:"500.00"`
	PeriodLabel string          `json:"periodLabel" example:"Mar 2024"`
	BudgetUsage
}

// UsageSummary computes the usage of every active budget of a tenant,
// sorted by percent used descending so that budgets at risk come first.
func UsageSummary(db *gorm.DB, ownerID uuid.UUID, today types.Date) ([]BudgetUsageItem, error) {
	var budgets []Budget
	err := db.
		Where(&Budget{OwnerID: ownerID}).
		Where("archived = ?", false).
		Order("name ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	items := make([]BudgetUsageItem, 0, len(budgets))
	for _, budget := range budgets {
		usage, err := budget.Usage(db, today)
		if err != nil {
			return nil, err
		}

		items = append(items, BudgetUsageItem{
			BudgetID:    budget.ID,
			Name:        budget.Name,
			Amount:      budget.Amount,
			PeriodLabel: periodLabel(usage.PeriodStart, usage.PeriodEnd),
			BudgetUsage: usage,
		})
	}

	slices.SortStableFunc(items, func(a, b BudgetUsageItem) int {
		return b.PercentUsed.Cmp(a.PercentUsed)
	})

	return items, nil
}

// periodLabel renders a full calendar month as "Jan 2006" and any other
// range as explicit dates.
func periodLabel(start, end types.Date) string {
	monthStart := types.NewDate(start.Year(), start.Month(), 1)
	monthEnd := monthStart.AddDate(0, 1, -1)

	if start.Equal(monthStart) && end.Equal(monthEnd) {
		return start.Format("Jan 2006")
	}

	return fmt.Sprintf("%s to %s", start, end)
}
