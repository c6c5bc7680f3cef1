package models_test

import (
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/period"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestBudgetUsageOverspent() {
	label := suite.createTestLabel(models.Label{Name: "Groceries"})
	id := label.ID

	budget := suite.createTestBudget(models.Budget{
		Name:   "Groceries",
		Amount: decimal.NewFromFloat(500),
		Period: period.Monthly,
		Labels: []models.Label{label},
	})

	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 5),
		Amount:    decimal.NewFromFloat(400),
		Direction: models.Outflow,
		LabelID:   &id,
	})
	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 20),
		Amount:    decimal.NewFromFloat(250),
		Direction: models.Outflow,
		LabelID:   &id,
	})

	// Out of the period, does not count
	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 2, 28),
		Amount:    decimal.NewFromFloat(100),
		Direction: models.Outflow,
		LabelID:   &id,
	})

	// Inflows never count against a budget
	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 10),
		Amount:    decimal.NewFromFloat(50),
		Direction: models.Inflow,
		LabelID:   &id,
	})

	usage, err := budget.Usage(models.DB, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)

	suite.Assert().True(usage.Spent.Equal(decimal.NewFromFloat(650)), "Spent is %s", usage.Spent)
	suite.Assert().True(usage.Remaining.Equal(decimal.NewFromFloat(-150)), "Remaining is %s", usage.Remaining)
	suite.Assert().True(usage.PercentUsed.Equal(decimal.NewFromFloat(130)), "PercentUsed is %s", usage.PercentUsed)
	suite.Assert().True(usage.IsOver)
	suite.Assert().True(usage.PeriodStart.Equal(types.NewDate(2024, 3, 1)))
	suite.Assert().True(usage.PeriodEnd.Equal(types.NewDate(2024, 3, 31)))
}

func (suite *TestSuiteStandard) TestBudgetUsageLabelsOverCategory() {
	label := suite.createTestLabel(models.Label{Name: "Groceries"})
	id := label.ID

	budget := suite.createTestBudget(models.Budget{
		Name:     "Groceries",
		Amount:   decimal.NewFromFloat(500),
		Period:   period.Monthly,
		Labels:   []models.Label{label},
		Category: "Groceries",
	})

	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 5),
		Amount:    decimal.NewFromFloat(100),
		Direction: models.Outflow,
		LabelID:   &id,
	})

	// Matches the category but not the label, must not count
	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 6),
		Amount:    decimal.NewFromFloat(70),
		Direction: models.Outflow,
		Category:  "Groceries",
	})

	usage, err := budget.Usage(models.DB, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)
	suite.Assert().True(usage.Spent.Equal(decimal.NewFromFloat(100)), "Spent is %s", usage.Spent)
}

func (suite *TestSuiteStandard) TestBudgetUsageCategoryFallback() {
	budget := suite.createTestBudget(models.Budget{
		Name:     "Transport",
		Amount:   decimal.NewFromFloat(200),
		Period:   period.Monthly,
		Category: "Transport",
	})

	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 5),
		Amount:    decimal.NewFromFloat(49),
		Direction: models.Outflow,
		Category:  "Transport",
	})

	usage, err := budget.Usage(models.DB, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)
	suite.Assert().True(usage.Spent.Equal(decimal.NewFromFloat(49)), "Spent is %s", usage.Spent)
	suite.Assert().False(usage.IsOver)
}

func (suite *TestSuiteStandard) TestBudgetUsageNoLabelsNoCategory() {
	budget := suite.createTestBudget(models.Budget{
		Name:   "Unbound",
		Amount: decimal.NewFromFloat(100),
		Period: period.Monthly,
	})

	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 5),
		Amount:    decimal.NewFromFloat(49),
		Direction: models.Outflow,
	})

	usage, err := budget.Usage(models.DB, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)
	suite.Assert().True(usage.Spent.IsZero())
}

func (suite *TestSuiteStandard) TestBudgetUsageZeroAmount() {
	budget := suite.createTestBudget(models.Budget{
		Name:     "Zero",
		Period:   period.Monthly,
		Category: "Misc",
	})

	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 5),
		Amount:    decimal.NewFromFloat(10),
		Direction: models.Outflow,
		Category:  "Misc",
	})

	usage, err := budget.Usage(models.DB, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)

	// No division by zero, anything spent exceeds a zero budget
	suite.Assert().True(usage.PercentUsed.IsZero())
	suite.Assert().True(usage.IsOver)
}

func (suite *TestSuiteStandard) TestUsageSummary() {
	_ = suite.createTestBudget(models.Budget{
		Name:     "Groceries",
		Amount:   decimal.NewFromFloat(500),
		Period:   period.Monthly,
		Category: "Groceries",
	})
	_ = suite.createTestBudget(models.Budget{
		Name:     "Transport",
		Amount:   decimal.NewFromFloat(100),
		Period:   period.Monthly,
		Category: "Transport",
	})
	_ = suite.createTestBudget(models.Budget{
		Name:     "Archived",
		Amount:   decimal.NewFromFloat(100),
		Period:   period.Monthly,
		Category: "Old",
		Archived: true,
	})

	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 5),
		Amount:    decimal.NewFromFloat(50),
		Direction: models.Outflow,
		Category:  "Groceries",
	})
	_ = suite.createTestTransaction(models.Transaction{
		Date:      types.NewDate(2024, 3, 6),
		Amount:    decimal.NewFromFloat(90),
		Direction: models.Outflow,
		Category:  "Transport",
	})

	items, err := models.UsageSummary(models.DB, ownerID, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)
	suite.Require().Len(items, 2, "Archived budgets must not appear in the summary")

	// Budgets at risk come first
	suite.Assert().Equal("Transport", items[0].Name)
	suite.Assert().Equal("Groceries", items[1].Name)
	suite.Assert().Equal("Mar 2024", items[0].PeriodLabel)
}

func (suite *TestSuiteStandard) TestUsageSummaryCustomPeriodLabel() {
	_ = suite.createTestBudget(models.Budget{
		Name:      "Vacation",
		Amount:    decimal.NewFromFloat(1000),
		Period:    period.Custom,
		StartDate: types.NewDate(2024, 3, 10),
		EndDate:   types.NewDate(2024, 3, 20),
	})

	items, err := models.UsageSummary(models.DB, ownerID, types.NewDate(2024, 3, 15))
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Assert().Equal("2024-03-10 to 2024-03-20", items[0].PeriodLabel)
}
