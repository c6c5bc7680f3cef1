// Package sweep runs the materializers over all recurring templates.
package sweep

import (
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Result is the aggregate outcome of one materialization run.
type Result struct {
	TransactionsCreated int `json:"transactionsCreated" example:"3"`
	BudgetsCreated      int `json:"budgetsCreated" example:"1"`
	InvoicesCreated     int `json:"invoicesCreated" example:"1"`
	Errors              int `json:"errors" example:"0"`
}

// Run materializes every recurring template of every tenant that is due.
//
// A failing template is logged and counted, it never stops the run for the
// remaining templates. The checkpoint semantics of the individual
// materializers make re-running safe at any time.
func Run(db *gorm.DB, today types.Date) Result {
	var result Result

	var templates []models.RecurringTransaction
	err := db.Where("active = ?", true).Find(&templates).Error
	if err != nil {
		log.Error().Err(err).Msg("sweep: listing recurring transactions")
		result.Errors++
	}

	for i := range templates {
		created, err := templates[i].Materialize(db, today, models.DefaultHorizonDays)
		result.TransactionsCreated += created
		if err != nil {
			log.Error().Err(err).
				Str("template", templates[i].ID.String()).
				Msg("sweep: materializing recurring transaction")
			result.Errors++
		}
	}

	var budgets []models.Budget
	err = db.Where("is_recurring = ? AND recurrence_count > 0", true).Find(&budgets).Error
	if err != nil {
		log.Error().Err(err).Msg("sweep: listing recurring budgets")
		result.Errors++
	}

	for i := range budgets {
		created, err := budgets[i].MaterializeRecurring(db)
		result.BudgetsCreated += created
		if err != nil {
			log.Error().Err(err).
				Str("template", budgets[i].ID.String()).
				Msg("sweep: materializing recurring budget")
			result.Errors++
		}
	}

	var invoices []models.Invoice
	err = db.
		Where("is_recurring = ? AND status = ? AND recurring_group_id IS NOT NULL", true, models.StatusPaid).
		Find(&invoices).Error
	if err != nil {
		log.Error().Err(err).Msg("sweep: listing recurring invoices")
		result.Errors++
	}

	for i := range invoices {
		successor, err := invoices[i].MaterializeNext(db, today)
		if err != nil {
			log.Error().Err(err).
				Str("invoice", invoices[i].ID.String()).
				Msg("sweep: materializing recurring invoice")
			result.Errors++
			continue
		}

		if successor != nil {
			result.InvoicesCreated++
		}
	}

	log.Info().
		Int("transactions", result.TransactionsCreated).
		Int("budgets", result.BudgetsCreated).
		Int("invoices", result.InvoicesCreated).
		Int("errors", result.Errors).
		Msg("materialization sweep complete")

	return result
}
