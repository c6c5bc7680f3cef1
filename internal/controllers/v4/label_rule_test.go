package v4_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	v4 "github.com/ledgerlight/backend/internal/controllers/v4"
	"github.com/ledgerlight/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLabelRule(t *testing.T, rule v4.LabelRuleEditable, expectedStatus ...int) v4.LabelRuleResponse {
	if rule.OwnerID == uuid.Nil {
		rule.OwnerID = ownerID
	}

	if rule.LabelID == uuid.Nil {
		rule.LabelID = createTestLabel(t, v4.LabelEditable{}).Data.ID
	}

	if rule.Match == "" {
		rule.Match = uuid.NewString()
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v4.LabelRuleEditable{rule}

	r := test.Request(t, http.MethodPost, "http://example.com/v4/label-rules", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v4.LabelRuleCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v4.LabelRuleResponse{}
}

// TestLabelRulesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestLabelRulesOptions() {
	tests := []struct {
		name   string
		id     string // path at the label-rules endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No rule with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Rule exists", createTestLabelRule(suite.T(), v4.LabelRuleEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v4/label-rules", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestLabelRulesCreateFails() {
	tests := []struct {
		name     string
		body     any
		status   int // expected HTTP status
		testFunc func(t *testing.T, r v4.LabelRuleCreateResponse)
	}{
		{
			"No body", "", http.StatusBadRequest,
			func(t *testing.T, r v4.LabelRuleCreateResponse) {
				assert.Equal(t, "the request body must not be empty", *r.Error)
			},
		},
		{
			"Non-existing label",
			[]v4.LabelRuleEditable{
				{
					OwnerID: ownerID,
					Match:   "REWE*",
					LabelID: uuid.New(),
				},
			},
			http.StatusNotFound,
			func(t *testing.T, r v4.LabelRuleCreateResponse) {
				assert.Equal(t, "there is no label matching your query", *r.Data[0].Error)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v4/label-rules", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v4.LabelRuleCreateResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

// TestLabelRulesGetSorted verifies that rules are returned in evaluation
// order.
func (suite *TestSuiteStandard) TestLabelRulesGetSorted() {
	second := createTestLabelRule(suite.T(), v4.LabelRuleEditable{Priority: 2, Match: "B*"})
	first := createTestLabelRule(suite.T(), v4.LabelRuleEditable{Priority: 1, Match: "A*"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v4/label-rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v4.LabelRuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), first.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), second.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestLabelRulesGetFilter() {
	label := createTestLabel(suite.T(), v4.LabelEditable{Name: "Groceries"})

	_ = createTestLabelRule(suite.T(), v4.LabelRuleEditable{Priority: 1, Match: "REWE*", LabelID: label.Data.ID})
	_ = createTestLabelRule(suite.T(), v4.LabelRuleEditable{Priority: 2, Match: "EDEKA*", LabelID: label.Data.ID})
	_ = createTestLabelRule(suite.T(), v4.LabelRuleEditable{Priority: 3, Match: "DB*"})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"Owner", fmt.Sprintf("owner=%s", ownerID), 3},
		{"Label", fmt.Sprintf("label=%s", label.Data.ID), 2},
		{"Match", "match=REWE", 1},
		{"Offset 2", "offset=2", 1},
		{"Limit 1", "limit=1", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v4.LabelRuleListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v4/label-rules?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// Verify that updating rules works as desired
func (suite *TestSuiteStandard) TestLabelRulesUpdate() {
	rule := createTestLabelRule(suite.T(), v4.LabelRuleEditable{Priority: 1, Match: "REWE*"})

	r := test.Request(suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{
		"priority": 5,
		"match":    "EDEKA*",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v4.LabelRuleResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), uint(5), response.Data.Priority)
	assert.Equal(suite.T(), "EDEKA*", response.Data.Match)
}

// TestLabelRulesDelete verifies all cases for rule deletions.
func (suite *TestSuiteStandard) TestLabelRulesDelete() {
	tests := []struct {
		name   string
		id     string
		status int // expected response status
	}{
		{"Success", "", http.StatusNoContent},
		{"Non-existing rule", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				rule := createTestLabelRule(t, v4.LabelRuleEditable{})
				tt.id = rule.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v4/label-rules/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}
