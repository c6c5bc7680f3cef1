package v4_test

import (
	"net/http"

	v4 "github.com/ledgerlight/backend/internal/controllers/v4"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlight/backend/test"
)

func (suite *TestSuiteStandard) TestMaterializationsOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v4/materializations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	assert.Equal(suite.T(), "POST", r.Header().Get("allow"))
}

// TestMaterializationsCreate verifies that a sweep evaluates all active
// templates and that a second sweep on the same day creates nothing.
func (suite *TestSuiteStandard) TestMaterializationsCreate() {
	_ = createTestRecurringTransaction(suite.T(), v4.RecurringTransactionEditable{
		Description: "Rent",
		Amount:      decimal.NewFromFloat(850),
		StartDate:   types.Today().AddDate(0, 0, -40),
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v4/materializations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v4.SweepResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.GreaterOrEqual(suite.T(), response.Data.TransactionsCreated, 3)
	assert.Zero(suite.T(), response.Data.BudgetsCreated)
	assert.Zero(suite.T(), response.Data.InvoicesCreated)
	assert.Zero(suite.T(), response.Data.Errors)

	// Everything due is already materialized
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v4/materializations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	test.DecodeResponse(suite.T(), &r, &response)
	assert.Zero(suite.T(), response.Data.TransactionsCreated)
}

func (suite *TestSuiteStandard) TestMaterializationsDBError() {
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v4/materializations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v4.SweepResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.NotZero(suite.T(), response.Data.Errors)
	assert.Zero(suite.T(), response.Data.TransactionsCreated)
}
