package v4_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v4 "github.com/ledgerlight/backend/internal/controllers/v4"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/period"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/ledgerlight/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBudget(t *testing.T, b v4.BudgetEditable, expectedStatus ...int) v4.BudgetResponse {
	if b.OwnerID == uuid.Nil {
		b.OwnerID = ownerID
	}

	if b.Name == "" {
		b.Name = uuid.NewString()
	}

	if b.Period == "" {
		b.Period = period.Monthly
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v4.BudgetEditable{b}

	r := test.Request(t, http.MethodPost, "http://example.com/v4/budgets", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v4.BudgetCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v4.BudgetResponse{}
}

// TestBudgetsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestBudgetsOptions() {
	tests := []struct {
		name   string
		id     string // path at the budgets endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No Budget with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Budget exists", createTestBudget(suite.T(), v4.BudgetEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v4/budgets", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

// TestBudgetsCreateWithLabels verifies that the labels of a budget are
// resolved and returned on creation.
func (suite *TestSuiteStandard) TestBudgetsCreateWithLabels() {
	groceries := createTestLabel(suite.T(), v4.LabelEditable{Name: "Groceries"})
	household := createTestLabel(suite.T(), v4.LabelEditable{Name: "Household"})

	budget := createTestBudget(suite.T(), v4.BudgetEditable{
		Name:     "Daily needs",
		Amount:   decimal.NewFromFloat(500),
		LabelIDs: []uuid.UUID{groceries.Data.ID, household.Data.ID},
	})

	assert.Len(suite.T(), budget.Data.LabelIDs, 2)
}

func (suite *TestSuiteStandard) TestBudgetsCreateFails() {
	tests := []struct {
		name     string
		body     any
		status   int // expected HTTP status
		testFunc func(t *testing.T, r v4.BudgetCreateResponse)
	}{
		{
			"No body", "", http.StatusBadRequest,
			func(t *testing.T, r v4.BudgetCreateResponse) {
				assert.Equal(t, "the request body must not be empty", *r.Error)
			},
		},
		{
			"Custom period without dates",
			[]v4.BudgetEditable{
				{
					OwnerID: ownerID,
					Name:    "Custom",
					Period:  period.Custom,
				},
			},
			http.StatusBadRequest,
			func(t *testing.T, r v4.BudgetCreateResponse) {
				assert.Equal(t, models.ErrBudgetCustomPeriodNoDates.Error(), *r.Data[0].Error)
			},
		},
		{
			"Custom period with inverted dates",
			[]v4.BudgetEditable{
				{
					OwnerID:   ownerID,
					Name:      "Custom",
					Period:    period.Custom,
					StartDate: types.NewDate(2024, 3, 31),
					EndDate:   types.NewDate(2024, 3, 1),
				},
			},
			http.StatusBadRequest,
			func(t *testing.T, r v4.BudgetCreateResponse) {
				assert.Equal(t, models.ErrBudgetCustomPeriodInverted.Error(), *r.Data[0].Error)
			},
		},
		{
			"Negative amount",
			[]v4.BudgetEditable{
				{
					OwnerID: ownerID,
					Name:    "Negative",
					Amount:  decimal.NewFromFloat(-10),
					Period:  period.Monthly,
				},
			},
			http.StatusBadRequest,
			func(t *testing.T, r v4.BudgetCreateResponse) {
				assert.Equal(t, models.ErrBudgetAmountNegative.Error(), *r.Data[0].Error)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v4/budgets", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v4.BudgetCreateResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsGetFilter() {
	_ = createTestBudget(suite.T(), v4.BudgetEditable{
		Name:     "Groceries",
		Note:     "Everything from the supermarket",
		Category: "groceries",
	})

	_ = createTestBudget(suite.T(), v4.BudgetEditable{
		Name:     "Vacation",
		Period:   period.Custom,
		StartDate: types.NewDate(2024, 7, 1),
		EndDate:   types.NewDate(2024, 7, 14),
		Archived: true,
	})

	_ = createTestBudget(suite.T(), v4.BudgetEditable{
		Name:            "Rent",
		IsRecurring:     true,
		RecurrenceCount: 6,
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"Owner", fmt.Sprintf("owner=%s", ownerID), 3},
		{"Owner Not Existing", "owner=c9e4ee7a-e702-4f92-b168-11a95b22c7aa", 0},
		{"Name", "name=Groceries", 1},
		{"Category", "category=groceries", 1},
		{"Period", "period=custom", 1},
		{"Archived", "archived=true", 1},
		{"Recurring", "isRecurring=true", 1},
		{"Search in note", "search=supermarket", 1},
		{"Offset 2", "offset=2", 1},
		{"Limit 1", "limit=1", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v4.BudgetListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v4/budgets?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// Verify that updating budgets works as desired
func (suite *TestSuiteStandard) TestBudgetsUpdate() {
	label := createTestLabel(suite.T(), v4.LabelEditable{Name: "Groceries"})
	budget := createTestBudget(suite.T(), v4.BudgetEditable{Name: "Budget name"})

	tests := []struct {
		name     string         // name of the test
		body     map[string]any // the updates to perform. This is not a struct because that would set all fields on the request
		testFunc func(t *testing.T, r v4.BudgetResponse)
	}{
		{
			"Name, Amount",
			map[string]any{
				"name":   "Another name",
				"amount": 750,
			},
			func(t *testing.T, r v4.BudgetResponse) {
				assert.Equal(t, "Another name", r.Data.Name)
				assert.True(t, r.Data.Amount.Equal(decimal.NewFromFloat(750)))
			},
		},
		{
			"Labels",
			map[string]any{
				"labelIds": []uuid.UUID{label.Data.ID},
			},
			func(t *testing.T, r v4.BudgetResponse) {
				require.Len(t, r.Data.LabelIDs, 1)
				assert.Equal(t, label.Data.ID, r.Data.LabelIDs[0])
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, budget.Data.Links.Self, tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v4.BudgetResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

// TestBudgetsUsage verifies the usage endpoint for a single budget.
func (suite *TestSuiteStandard) TestBudgetsUsage() {
	budget := createTestBudget(suite.T(), v4.BudgetEditable{
		Name:     "Groceries",
		Amount:   decimal.NewFromFloat(500),
		Category: "Food",
	})

	_ = createTestTransaction(suite.T(), v4.TransactionEditable{
		Description: "REWE",
		Amount:      decimal.NewFromFloat(120),
		Category:    "Food",
	})

	r := test.Request(suite.T(), http.MethodGet, budget.Data.Links.Usage, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v4.BudgetUsageResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.Spent.Equal(decimal.NewFromFloat(120)), "Spent is %s", response.Data.Spent)
	assert.True(suite.T(), response.Data.Remaining.Equal(decimal.NewFromFloat(380)))
	assert.False(suite.T(), response.Data.IsOver)
}

// TestBudgetsUsageSummary verifies the portfolio usage endpoint.
func (suite *TestSuiteStandard) TestBudgetsUsageSummary() {
	_ = createTestBudget(suite.T(), v4.BudgetEditable{
		Name:     "Groceries",
		Amount:   decimal.NewFromFloat(500),
		Category: "Food",
	})

	_ = createTestBudget(suite.T(), v4.BudgetEditable{
		Name:     "Transport",
		Amount:   decimal.NewFromFloat(100),
		Category: "Transport",
	})

	_ = createTestTransaction(suite.T(), v4.TransactionEditable{
		Description: "Monthly ticket",
		Amount:      decimal.NewFromFloat(90),
		Category:    "Transport",
	})

	tests := []struct {
		name   string
		query  string
		status int
		len    int
	}{
		{"With owner", fmt.Sprintf("owner=%s", ownerID), http.StatusOK, 2},
		{"Owner without budgets", fmt.Sprintf("owner=%s", uuid.New()), http.StatusOK, 0},
		{"Without owner", "", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v4/budgets/usage?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status != http.StatusOK {
				return
			}

			var response v4.BudgetUsageSummaryResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)

			if tt.len == 2 {
				// The budget most at risk comes first
				assert.Equal(t, "Transport", response.Data[0].Name)
			}
		})
	}
}

// TestBudgetsMaterialize verifies the materialization endpoint for recurring
// budget templates.
func (suite *TestSuiteStandard) TestBudgetsMaterialize() {
	budget := createTestBudget(suite.T(), v4.BudgetEditable{
		Name:            "Groceries",
		Amount:          decimal.NewFromFloat(500),
		StartDate:       types.NewDate(2024, 1, 15),
		IsRecurring:     true,
		RecurrenceCount: 3,
	})

	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("%s/materialize", budget.Data.Links.Self), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v4.MaterializationResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), 3, response.Data.Created)

	// A second run has nothing left to generate
	r = test.Request(suite.T(), http.MethodPost, fmt.Sprintf("%s/materialize", budget.Data.Links.Self), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), 0, response.Data.Created)
}

// TestBudgetsDelete verifies all cases for budget deletions.
func (suite *TestSuiteStandard) TestBudgetsDelete() {
	budget := createTestBudget(suite.T(), v4.BudgetEditable{})

	r := test.Request(suite.T(), http.MethodDelete, budget.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v4/budgets/%s", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
