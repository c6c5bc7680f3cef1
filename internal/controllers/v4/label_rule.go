package v4

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerlight/backend/internal/httputil"
	"github.com/ledgerlight/backend/internal/models"
	ll_uuid "github.com/ledgerlight/backend/internal/uuid"
	"golang.org/x/exp/slices"
)

// RegisterLabelRuleRoutes registers the routes for label rules with
// the RouterGroup that is passed.
func RegisterLabelRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsLabelRules)
		r.GET("", GetLabelRules)
		r.POST("", CreateLabelRules)
	}

	// LabelRule with ID
	{
		r.OPTIONS("/:id", OptionsLabelRuleDetail)
		r.GET("/:id", GetLabelRule)
		r.PATCH("/:id", UpdateLabelRule)
		r.DELETE("/:id", DeleteLabelRule)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			LabelRules
// @Success		204
// @Router			/v4/label-rules [options]
func OptionsLabelRules(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			LabelRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/label-rules/{id} [options]
func OptionsLabelRuleDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.LabelRule{})
}

// @Summary		Create label rules
// @Description	Creates new rules that label transactions by their description
// @Tags			LabelRules
// @Accept			json
// @Produce		json
// @Success		201		{object}	LabelRuleCreateResponse
// @Failure		400		{object}	LabelRuleCreateResponse
// @Failure		404		{object}	LabelRuleCreateResponse
// @Failure		500		{object}	LabelRuleCreateResponse
// @Param			rules	body		[]LabelRuleEditable	true	"LabelRules"
// @Router			/v4/label-rules [post]
func CreateLabelRules(c *gin.Context) {
	var editables []LabelRuleEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := LabelRuleCreateResponse{}

	for _, editable := range editables {
		rule := editable.model()
		err := models.DB.Create(&rule).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newLabelRule(c, rule)
		r.Data = append(r.Data, LabelRuleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List label rules
// @Description	Returns a list of label rules
// @Tags			LabelRules
// @Produce		json
// @Success		200	{object}	LabelRuleListResponse
// @Failure		400	{object}	LabelRuleListResponse
// @Failure		500	{object}	LabelRuleListResponse
// @Router			/v4/label-rules [get]
// @Param			owner	query	string	false	"Filter by owning tenant"
// @Param			match	query	string	false	"Filter by match pattern"
// @Param			label	query	string	false	"Filter by label ID"
// @Param			offset	query	uint	false	"The offset of the first rule returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of rules to return. Defaults to 50."
func GetLabelRules(c *gin.Context) {
	var filter LabelRuleQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	// Rules evaluate lowest priority first, list them in that order
	q := models.DB.Order("priority ASC, match ASC")

	if slices.Contains(setFields, "Owner") {
		q = q.Where("owner_id = ?", filter.Owner.UUID)
	}

	if filter.LabelID != ll_uuid.Nil {
		q = q.Where("label_id = ?", filter.LabelID.UUID)
	}

	if filter.Match != "" {
		q = q.Where("match LIKE ?", fmt.Sprintf("%%%s%%", filter.Match))
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 rules and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var rules []models.LabelRule
	err := q.Find(&rules).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleListResponse{
			Error: &e,
		})
		return
	}

	data := make([]LabelRule, 0)
	for _, rule := range rules {
		data = append(data, newLabelRule(c, rule))
	}

	c.JSON(http.StatusOK, LabelRuleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get label rule
// @Description	Returns a specific label rule
// @Tags			LabelRules
// @Produce		json
// @Success		200	{object}	LabelRuleResponse
// @Failure		400	{object}	LabelRuleResponse
// @Failure		404	{object}	LabelRuleResponse
// @Failure		500	{object}	LabelRuleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/label-rules/{id} [get]
func GetLabelRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	var rule models.LabelRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	data := newLabelRule(c, rule)
	c.JSON(http.StatusOK, LabelRuleResponse{Data: &data})
}

// @Summary		Update label rule
// @Description	Updates an existing label rule. Only values to be updated need to be specified.
// @Tags			LabelRules
// @Accept			json
// @Produce		json
// @Success		200		{object}	LabelRuleResponse
// @Failure		400		{object}	LabelRuleResponse
// @Failure		404		{object}	LabelRuleResponse
// @Failure		500		{object}	LabelRuleResponse
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			rule	body		LabelRuleEditable	true	"LabelRule"
// @Router			/v4/label-rules/{id} [patch]
func UpdateLabelRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	var rule models.LabelRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, LabelRuleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	var update LabelRuleEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&rule).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelRuleResponse{
			Error: &e,
		})
		return
	}

	data := newLabelRule(c, rule)
	c.JSON(http.StatusOK, LabelRuleResponse{Data: &data})
}

// @Summary		Delete label rule
// @Description	Deletes a label rule
// @Tags			LabelRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/label-rules/{id} [delete]
func DeleteLabelRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var rule models.LabelRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
