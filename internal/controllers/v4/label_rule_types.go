package v4

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/models"
	ll_uuid "github.com/ledgerlight/backend/internal/uuid"
)

// LabelRuleEditable represents all values for a LabelRule that can be updated by the API
type LabelRuleEditable struct {
	OwnerID  uuid.UUID `json:"ownerId" example:"d2be43f9-ffb8-4db9-a40b-2d77ae646a30"` // The tenant this rule belongs to
	Priority uint      `json:"priority" example:"1"`                                   // The priority of the rule, lower runs first
	Match    string    `json:"match" example:"REWE*"`                                  // The glob pattern matched against transaction descriptions
	LabelID  uuid.UUID `json:"labelId" example:"2b70c8c6-d1f1-4c2b-b096-9ff9e5f43813"` // The label applied on match
}

func (editable LabelRuleEditable) model() models.LabelRule {
	return models.LabelRule{
		OwnerID:  editable.OwnerID,
		Priority: editable.Priority,
		Match:    editable.Match,
		LabelID:  editable.LabelID,
	}
}

type LabelRuleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v4/label-rules/95685c82-53c6-455d-b235-f49960b73b21"` // The rule itself
}

// LabelRule is the API representation of a LabelRule
type LabelRule struct {
	models.DefaultModel
	LabelRuleEditable
	Links LabelRuleLinks `json:"links"`
}

func newLabelRule(c *gin.Context, model models.LabelRule) LabelRule {
	url := c.GetString(string(models.DBContextURL))

	return LabelRule{
		DefaultModel: model.DefaultModel,
		LabelRuleEditable: LabelRuleEditable{
			OwnerID:  model.OwnerID,
			Priority: model.Priority,
			Match:    model.Match,
			LabelID:  model.LabelID,
		},
		Links: LabelRuleLinks{
			Self: fmt.Sprintf("%s/v4/label-rules/%s", url, model.ID),
		},
	}
}

type LabelRuleListResponse struct {
	Data       []LabelRule `json:"data"`                                                          // List of label rules
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type LabelRuleCreateResponse struct {
	Data  []LabelRuleResponse `json:"data"`                                                          // List of created label rules
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

func (l *LabelRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	l.Data = append(l.Data, LabelRuleResponse{Error: &s})

	// The final status code is the highest one that occurs
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type LabelRuleResponse struct {
	Data  *LabelRule `json:"data"`                                                          // The label rule data, if creation was successful
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

type LabelRuleQueryFilter struct {
	Owner   ll_uuid.UUID `form:"owner" filterField:"false"`  // Filter by the owning tenant
	Match   string       `form:"match" filterField:"false"`  // Filter by match pattern
	LabelID ll_uuid.UUID `form:"label" filterField:"false"`  // Filter by label ID
	Offset  uint         `form:"offset" filterField:"false"` // The offset of the first rule returned. Defaults to 0.
	Limit   int          `form:"limit" filterField:"false"`  // Maximum number of rules to return. Defaults to 50.
}
