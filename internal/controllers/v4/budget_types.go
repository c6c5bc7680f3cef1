package v4

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/period"
	"github.com/ledgerlight/backend/internal/types"
	ll_uuid "github.com/ledgerlight/backend/internal/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetEditable represents all user configurable parameters
type BudgetEditable struct {
	OwnerID         uuid.UUID       `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // The tenant owning the budget
	Name            string          `json:"name" example:"Groceries" default:""`
	Note            string          `json:"note" example:"Everything from the supermarket" default:""`
	Amount          decimal.Decimal `json:"amount" example:"500.00" default:"0"`
	Period          period.Period   `json:"period" example:"monthly" default:"monthly"`
	StartDate       types.Date      `json:"startDate" example:"2024-03-01"` // Only used when period is custom
	EndDate         types.Date      `json:"endDate" example:"2024-03-31"`   // Only used when period is custom
	Category        string          `json:"category" example:"groceries" default:""` // Legacy free-text category, superseded by labels
	LabelIDs        []uuid.UUID     `json:"labelIds"`                                // Labels whose spending counts against the budget
	Archived        bool            `json:"archived" example:"true" default:"false"`
	IsRecurring     bool            `json:"isRecurring" example:"false" default:"false"`
	RecurrenceCount int             `json:"recurrenceCount" example:"6" default:"0"` // How many future periods to generate
}

func (editable BudgetEditable) model() models.Budget {
	return models.Budget{
		OwnerID:         editable.OwnerID,
		Name:            editable.Name,
		Note:            editable.Note,
		Amount:          editable.Amount,
		Period:          editable.Period,
		StartDate:       editable.StartDate,
		EndDate:         editable.EndDate,
		Category:        editable.Category,
		Archived:        editable.Archived,
		IsRecurring:     editable.IsRecurring,
		RecurrenceCount: editable.RecurrenceCount,
	}
}

type BudgetLinks struct {
	Self  string `json:"self" example:"https://example.com/api/v4/budgets/3b1ea324-d438-4419-882a-2fc91d71772f"`
	Usage string `json:"usage" example:"https://example.com/api/v4/budgets/3b1ea324-d438-4419-882a-2fc91d71772f/usage"`
}

type Budget struct {
	models.DefaultModel
	BudgetEditable
	Links BudgetLinks `json:"links"`
}

func newBudget(c *gin.Context, db *gorm.DB, model models.Budget) (Budget, error) {
	url := c.GetString(string(models.DBContextURL))

	var labels []models.Label
	err := db.Model(&model).Association("Labels").Find(&labels)
	if err != nil {
		return Budget{}, err
	}

	labelIDs := make([]uuid.UUID, 0, len(labels))
	for _, label := range labels {
		labelIDs = append(labelIDs, label.ID)
	}

	return Budget{
		DefaultModel: model.DefaultModel,
		BudgetEditable: BudgetEditable{
			OwnerID:         model.OwnerID,
			Name:            model.Name,
			Note:            model.Note,
			Amount:          model.Amount,
			Period:          model.Period,
			StartDate:       model.StartDate,
			EndDate:         model.EndDate,
			Category:        model.Category,
			LabelIDs:        labelIDs,
			Archived:        model.Archived,
			IsRecurring:     model.IsRecurring,
			RecurrenceCount: model.RecurrenceCount,
		},
		Links: BudgetLinks{
			Self:  fmt.Sprintf("%s/v4/budgets/%s", url, model.ID),
			Usage: fmt.Sprintf("%s/v4/budgets/%s/usage", url, model.ID),
		},
	}, nil
}

type BudgetListResponse struct {
	Data       []Budget    `json:"data"`
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination `json:"pagination"`
}

type BudgetCreateResponse struct {
	Data  []BudgetResponse `json:"data"`
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"`
}

func (b *BudgetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	b.Data = append(b.Data, BudgetResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

type BudgetUsageResponse struct {
	Data  *models.BudgetUsage `json:"data"`
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"`
}

type BudgetUsageSummaryResponse struct {
	Data  []models.BudgetUsageItem `json:"data"`
	Error *string                  `json:"error" example:"the owner query parameter must be set"`
}

type BudgetQueryFilter struct {
	Owner       ll_uuid.UUID  `form:"owner" filterField:"false"` // By owning tenant
	Name        string        `form:"name" filterField:"false"`
	Note        string        `form:"note" filterField:"false"`
	Category    string        `form:"category"`
	Period      period.Period `form:"period"`
	Archived    bool          `form:"archived"`
	IsRecurring bool          `form:"isRecurring"`
	Search      string        `form:"search" filterField:"false"`
	Offset      uint          `form:"offset" filterField:"false"`
	Limit       int           `form:"limit" filterField:"false"`
}

func (f BudgetQueryFilter) model() models.Budget {
	return models.Budget{
		Category:    f.Category,
		Period:      f.Period,
		Archived:    f.Archived,
		IsRecurring: f.IsRecurring,
	}
}
