package v4

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerlight/backend/internal/httputil"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/sweep"
	"github.com/ledgerlight/backend/internal/types"
)

// MaterializationResult reports how many resources a single template
// materialization created.
type MaterializationResult struct {
	Created int `json:"created" example:"2"` // Number of resources that were created
}

type MaterializationResponse struct {
	Data  *MaterializationResult `json:"data"`                                                          // The materialization result
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if one occurred
}

type SweepResponse struct {
	Data  *sweep.Result `json:"data"`                                            // The sweep result
	Error *string       `json:"error" example:"there is no database connection"` // The error, if one occurred
}

// RegisterMaterializationRoutes registers the routes for sweep runs with
// the RouterGroup that is passed.
func RegisterMaterializationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsMaterializations)
	r.POST("", CreateMaterialization)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Materializations
// @Success		204
// @Router			/v4/materializations [options]
func OptionsMaterializations(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Run a sweep
// @Description	Evaluates all recurrence templates and creates everything that is due. Failures of single templates do not abort the run, they are counted.
// @Tags			Materializations
// @Produce		json
// @Success		201	{object}	SweepResponse
// @Failure		500	{object}	SweepResponse
// @Router			/v4/materializations [post]
func CreateMaterialization(c *gin.Context) {
	result := sweep.Run(models.DB, types.Today())

	c.JSON(http.StatusCreated, SweepResponse{Data: &result})
}
