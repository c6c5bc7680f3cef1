package v4

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerlight/backend/internal/httputil"
	"github.com/ledgerlight/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterLabelRoutes registers the routes for labels with
// the RouterGroup that is passed.
func RegisterLabelRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsLabels)
		r.GET("", GetLabels)
		r.POST("", CreateLabels)
	}

	// Label with ID
	{
		r.OPTIONS("/:id", OptionsLabelDetail)
		r.GET("/:id", GetLabel)
		r.PATCH("/:id", UpdateLabel)
		r.DELETE("/:id", DeleteLabel)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Labels
// @Success		204
// @Router			/v4/labels [options]
func OptionsLabels(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Labels
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/labels/{id} [options]
func OptionsLabelDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Label{})
}

// @Summary		Create labels
// @Description	Creates new labels
// @Tags			Labels
// @Accept			json
// @Produce		json
// @Success		201		{object}	LabelCreateResponse
// @Failure		400		{object}	LabelCreateResponse
// @Failure		500		{object}	LabelCreateResponse
// @Param			labels	body		[]LabelEditable	true	"Labels"
// @Router			/v4/labels [post]
func CreateLabels(c *gin.Context) {
	var editables []LabelEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := LabelCreateResponse{}

	for _, editable := range editables {
		label := editable.model()
		err := models.DB.Create(&label).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newLabel(c, label)
		r.Data = append(r.Data, LabelResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List labels
// @Description	Returns a list of labels
// @Tags			Labels
// @Produce		json
// @Success		200	{object}	LabelListResponse
// @Failure		400	{object}	LabelListResponse
// @Failure		500	{object}	LabelListResponse
// @Router			/v4/labels [get]
// @Param			owner		query	string	false	"Filter by owning tenant"
// @Param			name		query	string	false	"Filter by name"
// @Param			archived	query	bool	false	"Is the label archived?"
// @Param			search		query	string	false	"Search for this text in the name"
// @Param			offset		query	uint	false	"The offset of the first Label returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Labels to return. Defaults to 50."
func GetLabels(c *gin.Context) {
	var filter LabelQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("name ASC").
		Where(filter.model(), queryFields...)

	if slices.Contains(setFields, "Owner") {
		q = q.Where("owner_id = ?", filter.Owner.UUID)
	}

	// Labels only carry a name, so name and search behave the same
	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("name = ''")
	}

	if filter.Search != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Search))
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to all Labels and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var labels []models.Label
	err := q.Find(&labels).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Label, 0)
	for _, label := range labels {
		data = append(data, newLabel(c, label))
	}

	c.JSON(http.StatusOK, LabelListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get label
// @Description	Returns a specific label
// @Tags			Labels
// @Produce		json
// @Success		200	{object}	LabelResponse
// @Failure		400	{object}	LabelResponse
// @Failure		404	{object}	LabelResponse
// @Failure		500	{object}	LabelResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/labels/{id} [get]
func GetLabel(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	var label models.Label
	err = models.DB.First(&label, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	data := newLabel(c, label)
	c.JSON(http.StatusOK, LabelResponse{Data: &data})
}

// @Summary		Update label
// @Description	Updates an existing label. Only values to be updated need to be specified.
// @Tags			Labels
// @Accept			json
// @Produce		json
// @Success		200		{object}	LabelResponse
// @Failure		400		{object}	LabelResponse
// @Failure		404		{object}	LabelResponse
// @Failure		500		{object}	LabelResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			label	body		LabelEditable	true	"Label"
// @Router			/v4/labels/{id} [patch]
func UpdateLabel(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	var label models.Label
	err = models.DB.First(&label, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, LabelEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	var update LabelEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&label).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LabelResponse{
			Error: &e,
		})
		return
	}

	data := newLabel(c, label)
	c.JSON(http.StatusOK, LabelResponse{Data: &data})
}

// @Summary		Delete label
// @Description	Deletes a label. Transactions keep existing and become unlabeled.
// @Tags			Labels
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/labels/{id} [delete]
func DeleteLabel(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var label models.Label
	err = models.DB.First(&label, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// Unlabel transactions that reference the label before it goes away
	err = models.DB.Model(&models.Transaction{}).
		Where("label_id = ?", label.ID).
		Update("label_id", nil).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// Rules pointing at the label are meaningless without it
	err = models.DB.Where("label_id = ?", label.ID).Delete(&models.LabelRule{}).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&label).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
