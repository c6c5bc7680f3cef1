package models_test

import (
	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionDefaults() {
	transaction := suite.createTestTransaction(models.Transaction{
		Description: "  Coffee  ",
		Amount:      decimal.NewFromFloat(3.50),
	})

	suite.Assert().Equal("Coffee", transaction.Description)
	suite.Assert().Equal(models.Outflow, transaction.Direction)
	suite.Assert().Equal(models.SourceManual, transaction.Source)
	suite.Assert().True(transaction.Date.Equal(types.Today()), "Date should default to today, is %s", transaction.Date)
}

func (suite *TestSuiteStandard) TestTransactionNegativeAmount() {
	err := models.DB.Create(&models.Transaction{
		OwnerID: ownerID,
		Amount:  decimal.NewFromFloat(-17.12),
	}).Error

	suite.Assert().ErrorIs(err, models.ErrTransactionAmountNegative)
}

func (suite *TestSuiteStandard) TestTransactionNilLabelPointer() {
	nilID := uuid.Nil
	transaction := suite.createTestTransaction(models.Transaction{
		Amount:  decimal.NewFromFloat(10),
		LabelID: &nilID,
	})

	suite.Assert().Nil(transaction.LabelID)
}
