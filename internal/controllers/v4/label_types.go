package v4

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/models"
	ll_uuid "github.com/ledgerlight/backend/internal/uuid"
)

// LabelEditable represents all values for a Label that can be updated by the API
type LabelEditable struct {
	OwnerID  uuid.UUID `json:"ownerId" example:"d2be43f9-ffb8-4db9-a40b-2d77ae646a30"` // The tenant this label belongs to
	Name     string    `json:"name" example:"Groceries"`                               // Name of the label, unique per tenant
	Color    string    `json:"color" example:"#14b8a6"`                                // Display color for the label
	Archived bool      `json:"archived" example:"true" default:"false"`                // Is the label archived?
}

func (editable LabelEditable) model() models.Label {
	return models.Label{
		OwnerID:  editable.OwnerID,
		Name:     editable.Name,
		Color:    editable.Color,
		Archived: editable.Archived,
	}
}

type LabelLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v4/labels/d130d7c3-d14c-4712-9336-ee56965a6673"`                           // The label itself
	Transactions string `json:"transactions" example:"https://example.com/api/v4/transactions?label=d130d7c3-d14c-4712-9336-ee56965a6673"` // Transactions with this label
}

// Label is the API representation of a Label
type Label struct {
	models.DefaultModel
	LabelEditable
	Links LabelLinks `json:"links"`
}

func newLabel(c *gin.Context, model models.Label) Label {
	url := c.GetString(string(models.DBContextURL))

	return Label{
		DefaultModel: model.DefaultModel,
		LabelEditable: LabelEditable{
			OwnerID:  model.OwnerID,
			Name:     model.Name,
			Color:    model.Color,
			Archived: model.Archived,
		},
		Links: LabelLinks{
			Self:         fmt.Sprintf("%s/v4/labels/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v4/transactions?label=%s", url, model.ID),
		},
	}
}

type LabelListResponse struct {
	Data       []Label     `json:"data"`                                                          // List of labels
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type LabelCreateResponse struct {
	Data  []LabelResponse `json:"data"`                                                          // List of created labels
	Error *string         `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

func (l *LabelCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	l.Data = append(l.Data, LabelResponse{Error: &s})

	// The final status code is the highest one that occurs
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type LabelResponse struct {
	Data  *Label  `json:"data"`                                                          // The label data, if creation was successful
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

type LabelQueryFilter struct {
	Owner    ll_uuid.UUID `form:"owner" filterField:"false"`  // Filter by the owning tenant
	Name     string       `form:"name" filterField:"false"`   // Filter by name
	Archived bool         `form:"archived"`                   // Is the label archived?
	Search   string       `form:"search" filterField:"false"` // Search for this text in the name
	Offset   uint         `form:"offset" filterField:"false"` // The offset of the first Label returned. Defaults to 0.
	Limit    int          `form:"limit" filterField:"false"`  // Maximum number of Labels to return. Defaults to 50.
}

func (f LabelQueryFilter) model() models.Label {
	return models.Label{
		Archived: f.Archived,
	}
}
