package v4_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	v4 "github.com/ledgerlight/backend/internal/controllers/v4"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/ledgerlight/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTransaction(t *testing.T, transaction v4.TransactionEditable, expectedStatus ...int) v4.TransactionResponse {
	if transaction.OwnerID == uuid.Nil {
		transaction.OwnerID = ownerID
	}

	if transaction.Description == "" {
		transaction.Description = uuid.NewString()
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v4.TransactionEditable{transaction}

	r := test.Request(t, http.MethodPost, "http://example.com/v4/transactions", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v4.TransactionCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v4.TransactionResponse{}
}

// TestTransactionsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestTransactionsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestTransaction(t, v4.TransactionEditable{Amount: decimal.NewFromFloat(17.32)}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v4/transactions", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v4.TransactionListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestTransactionsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestTransactionsOptions() {
	tests := []struct {
		name   string
		id     string // path at the transactions endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No Transaction with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Transaction exists", createTestTransaction(suite.T(), v4.TransactionEditable{Amount: decimal.NewFromFloat(31)}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v4/transactions", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

// TestTransactionsCreate verifies the defaults set on creation.
func (suite *TestSuiteStandard) TestTransactionsCreate() {
	transaction := createTestTransaction(suite.T(), v4.TransactionEditable{
		Description: "Weekly groceries",
		Amount:      decimal.NewFromFloat(14.03),
	})

	assert.Equal(suite.T(), models.Outflow, transaction.Data.Direction)
	assert.Equal(suite.T(), models.SourceManual, transaction.Data.Source)
	assert.True(suite.T(), transaction.Data.Date.Equal(types.Today()))
}

// TestTransactionsCreateAppliesRules verifies that label rules label new
// transactions.
func (suite *TestSuiteStandard) TestTransactionsCreateAppliesRules() {
	label := createTestLabel(suite.T(), v4.LabelEditable{Name: "Groceries"})

	_ = createTestLabelRule(suite.T(), v4.LabelRuleEditable{
		Priority: 1,
		Match:    "REWE*",
		LabelID:  label.Data.ID,
	})

	transaction := createTestTransaction(suite.T(), v4.TransactionEditable{
		Description: "REWE Marktkauf",
		Amount:      decimal.NewFromFloat(23.42),
	})

	require.NotNil(suite.T(), transaction.Data.LabelID)
	assert.Equal(suite.T(), label.Data.ID, *transaction.Data.LabelID)

	// An explicit label wins over the rules
	other := createTestLabel(suite.T(), v4.LabelEditable{Name: "Other"})
	id := other.Data.ID
	transaction = createTestTransaction(suite.T(), v4.TransactionEditable{
		Description: "REWE Marktkauf",
		Amount:      decimal.NewFromFloat(23.42),
		LabelID:     &id,
	})

	require.NotNil(suite.T(), transaction.Data.LabelID)
	assert.Equal(suite.T(), other.Data.ID, *transaction.Data.LabelID)
}

func (suite *TestSuiteStandard) TestTransactionsCreateFails() {
	tests := []struct {
		name     string
		body     any
		status   int // expected HTTP status
		testFunc func(t *testing.T, r v4.TransactionCreateResponse)
	}{
		{
			"No body", "", http.StatusBadRequest,
			func(t *testing.T, r v4.TransactionCreateResponse) {
				assert.Equal(t, "the request body must not be empty", *r.Error)
			},
		},
		{
			"Negative amount",
			[]v4.TransactionEditable{
				{
					OwnerID:     ownerID,
					Description: "Impossible",
					Amount:      decimal.NewFromFloat(-10),
				},
			},
			http.StatusBadRequest,
			func(t *testing.T, r v4.TransactionCreateResponse) {
				assert.Equal(t, models.ErrTransactionAmountNegative.Error(), *r.Data[0].Error)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v4/transactions", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v4.TransactionCreateResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsGetFilter() {
	label := createTestLabel(suite.T(), v4.LabelEditable{Name: "Groceries"})
	id := label.Data.ID

	_ = createTestTransaction(suite.T(), v4.TransactionEditable{
		Date:        types.NewDate(2024, 3, 5),
		Description: "REWE",
		Note:        "Weekly shopping",
		Amount:      decimal.NewFromFloat(23.17),
		LabelID:     &id,
		Category:    "Food",
		Account:     "Main checking",
	})

	_ = createTestTransaction(suite.T(), v4.TransactionEditable{
		Date:        types.NewDate(2024, 3, 10),
		Description: "Salary",
		Amount:      decimal.NewFromFloat(2800),
		Direction:   models.Inflow,
		Account:     "Main checking",
	})

	_ = createTestTransaction(suite.T(), v4.TransactionEditable{
		Date:        types.NewDate(2024, 4, 1),
		Description: "Rent",
		Amount:      decimal.NewFromFloat(850),
		Source:      models.SourceRecurring,
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"Owner", fmt.Sprintf("owner=%s", ownerID), 3},
		{"Date", "date=2024-03-05", 1},
		{"From date", "fromDate=2024-03-10", 2},
		{"Until date", "untilDate=2024-03-10", 2},
		{"Date range", "fromDate=2024-03-01&untilDate=2024-03-31", 2},
		{"Direction", "direction=inflow", 1},
		{"Source", "source=recurring", 1},
		{"Label", fmt.Sprintf("label=%s", id), 1},
		{"Category", "category=Food", 1},
		{"Account", "account=Main checking", 2},
		{"Amount", "amount=23.17", 1},
		{"Description", "description=rewe", 1},
		{"Note", "note=shopping", 1},
		{"Empty note", "note=", 2},
		{"Search matches note", "search=weekly", 1},
		{"Search matches description", "search=sal", 1},
		{"Offset 1", "offset=1", 2},
		{"Limit 2", "limit=2", 2},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var re v4.TransactionListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v4/transactions?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &re)

			assert.Equal(t, tt.len, len(re.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// TestTransactionsGetSorted verifies that transactions are sorted by date,
// newest first.
func (suite *TestSuiteStandard) TestTransactionsGetSorted() {
	oldest := createTestTransaction(suite.T(), v4.TransactionEditable{
		Date:   types.NewDate(2024, 1, 1),
		Amount: decimal.NewFromFloat(1),
	})

	newest := createTestTransaction(suite.T(), v4.TransactionEditable{
		Date:   types.NewDate(2024, 3, 1),
		Amount: decimal.NewFromFloat(2),
	})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v4/transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v4.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), newest.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), oldest.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestTransactionsPagination() {
	for i := 0; i < 10; i++ {
		createTestTransaction(suite.T(), v4.TransactionEditable{Amount: decimal.NewFromFloat(float64(i + 1))})
	}

	tests := []struct {
		name          string
		offset        uint
		limit         int
		expectedCount int
		expectedTotal int64
	}{
		{"All", 0, -1, 10, 10},
		{"First 5", 0, 5, 5, 10},
		{"Last 5", 5, -1, 5, 10},
		{"Offset 3", 3, -1, 7, 10},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v4/transactions?offset=%d&limit=%d", tt.offset, tt.limit), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

			var response v4.TransactionListResponse
			test.DecodeResponse(t, &r, &response)

			assert.Equal(suite.T(), tt.offset, response.Pagination.Offset)
			assert.Equal(suite.T(), tt.limit, response.Pagination.Limit)
			assert.Equal(suite.T(), tt.expectedCount, response.Pagination.Count)
			assert.Equal(suite.T(), tt.expectedTotal, response.Pagination.Total)
		})
	}
}

// Verify that updating transactions works as desired
func (suite *TestSuiteStandard) TestTransactionsUpdate() {
	transaction := createTestTransaction(suite.T(), v4.TransactionEditable{
		Description: "Original",
		Amount:      decimal.NewFromFloat(23.14),
	})

	tests := []struct {
		name     string         // name of the test
		body     map[string]any // the updates to perform. This is not a struct because that would set all fields on the request
		testFunc func(t *testing.T, r v4.TransactionResponse)
	}{
		{
			"Description, Note",
			map[string]any{
				"description": "Updated description",
				"note":        "A new note",
			},
			func(t *testing.T, r v4.TransactionResponse) {
				assert.Equal(t, "Updated description", r.Data.Description)
				assert.Equal(t, "A new note", r.Data.Note)
			},
		},
		{
			"Zero amount keeps the old amount",
			map[string]any{
				"amount": 0,
			},
			func(t *testing.T, r v4.TransactionResponse) {
				assert.True(t, r.Data.Amount.Equal(decimal.NewFromFloat(23.14)), "Amount is %s", r.Data.Amount)
			},
		},
		{
			"New amount",
			map[string]any{
				"amount": 42,
			},
			func(t *testing.T, r v4.TransactionResponse) {
				assert.True(t, r.Data.Amount.Equal(decimal.NewFromFloat(42)), "Amount is %s", r.Data.Amount)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, transaction.Data.Links.Self, tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v4.TransactionResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsUpdateFails() {
	tests := []struct {
		name   string
		id     string
		body   any
		status int // expected response status
	}{
		{"Invalid type", "", `{"description": 2}`, http.StatusBadRequest},
		{"Broken JSON", "", `{ "description": 2" }`, http.StatusBadRequest},
		{"Non-existing Transaction", uuid.New().String(), `{"description": "fails anyway"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				transaction := createTestTransaction(suite.T(), v4.TransactionEditable{
					Amount: decimal.NewFromFloat(5),
				})

				tt.id = transaction.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodPatch, fmt.Sprintf("http://example.com/v4/transactions/%s", tt.id), tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestTransactionsDelete verifies all cases for transaction deletions.
func (suite *TestSuiteStandard) TestTransactionsDelete() {
	tests := []struct {
		name   string
		id     string
		status int // expected response status
	}{
		{"Success", "", http.StatusNoContent},
		{"Non-existing Transaction", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				transaction := createTestTransaction(t, v4.TransactionEditable{Amount: decimal.NewFromFloat(1)})
				tt.id = transaction.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v4/transactions/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}
