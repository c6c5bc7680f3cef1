package v4

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerlight/backend/internal/httputil"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/types"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RegisterInvoiceRoutes registers the routes for invoices with
// the RouterGroup that is passed.
func RegisterInvoiceRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsInvoices)
		r.GET("", GetInvoices)
		r.POST("", CreateInvoices)
	}

	// Invoice with ID
	{
		r.OPTIONS("/:id", OptionsInvoiceDetail)
		r.GET("/:id", GetInvoice)
		r.PATCH("/:id", UpdateInvoice)
		r.DELETE("/:id", DeleteInvoice)
		r.POST("/:id/payments", CreateInvoicePayment)
		r.POST("/:id/send", SendInvoice)
		r.POST("/:id/cancel", CancelInvoice)
		r.POST("/:id/materialize", MaterializeInvoice)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Invoices
// @Success		204
// @Router			/v4/invoices [options]
func OptionsInvoices(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Invoices
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/invoices/{id} [options]
func OptionsInvoiceDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Invoice{})
}

// getInvoice loads an invoice with its items and payments
func getInvoice(id any) (models.Invoice, error) {
	var invoice models.Invoice
	err := models.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Payments").First(&invoice, id).Error

	return invoice, err
}

// @Summary		Create invoices
// @Description	Creates new invoices with their line items. Totals and status are calculated on creation.
// @Tags			Invoices
// @Accept			json
// @Produce		json
// @Success		201			{object}	InvoiceCreateResponse
// @Failure		400			{object}	InvoiceCreateResponse
// @Failure		500			{object}	InvoiceCreateResponse
// @Param			invoices	body		[]InvoiceEditable	true	"Invoices"
// @Router			/v4/invoices [post]
func CreateInvoices(c *gin.Context) {
	var editables []InvoiceEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := InvoiceCreateResponse{}

	for _, editable := range editables {
		invoice := editable.model()
		err := models.DB.Create(&invoice).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		// Totals derive from the items, the status from the totals
		err = invoice.RecalculateTotals(models.DB)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = invoice.UpdateStatus(models.DB, types.Today())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newInvoice(c, invoice)
		r.Data = append(r.Data, InvoiceResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List invoices
// @Description	Returns a list of invoices
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceListResponse
// @Failure		400	{object}	InvoiceListResponse
// @Failure		500	{object}	InvoiceListResponse
// @Router			/v4/invoices [get]
// @Param			owner		query	string	false	"Filter by owning tenant"
// @Param			status		query	string	false	"Filter by status"
// @Param			client		query	string	false	"Filter by client name"
// @Param			number		query	string	false	"Filter by invoice number"
// @Param			fromDate	query	string	false	"Invoices issued at and after this date"
// @Param			untilDate	query	string	false	"Invoices issued before and at this date"
// @Param			isRecurring	query	bool	false	"Is the invoice a recurrence template?"
// @Param			offset		query	uint	false	"The offset of the first Invoice returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Invoices to return. Defaults to 50."
func GetInvoices(c *gin.Context) {
	var filter InvoiceQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("invoices.date DESC, number DESC").
		Where(filter.model(), queryFields...)

	if slices.Contains(setFields, "Owner") {
		q = q.Where("owner_id = ?", filter.Owner.UUID)
	}

	if filter.ClientName != "" {
		q = q.Where("client_name LIKE ?", fmt.Sprintf("%%%s%%", filter.ClientName))
	}

	if !filter.FromDate.IsZero() {
		q = q.Where("invoices.date >= ?", filter.FromDate)
	}

	if !filter.UntilDate.IsZero() {
		q = q.Where("invoices.date <= ?", filter.UntilDate)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 invoices and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var invoices []models.Invoice
	err := q.Preload("Items").Preload("Payments").Find(&invoices).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Invoice, 0)
	for _, invoice := range invoices {
		data = append(data, newInvoice(c, invoice))
	}

	c.JSON(http.StatusOK, InvoiceListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get invoice
// @Description	Returns a specific invoice with its items and payments
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceResponse
// @Failure		400	{object}	InvoiceResponse
// @Failure		404	{object}	InvoiceResponse
// @Failure		500	{object}	InvoiceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/invoices/{id} [get]
func GetInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	invoice, err := getInvoice(uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	data := newInvoice(c, invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// @Summary		Update invoice
// @Description	Updates an existing invoice. When items are specified, they replace all existing items and the totals are recalculated.
// @Tags			Invoices
// @Accept			json
// @Produce		json
// @Success		200		{object}	InvoiceResponse
// @Failure		400		{object}	InvoiceResponse
// @Failure		404		{object}	InvoiceResponse
// @Failure		500		{object}	InvoiceResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			invoice	body		InvoiceEditable	true	"Invoice"
// @Router			/v4/invoices/{id} [patch]
func UpdateInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, InvoiceEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	var update InvoiceEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	// Items are a separate table, they are replaced wholesale
	if i := slices.Index(updateFields, any("Items")); i >= 0 {
		updateFields = slices.Delete(updateFields, i, i+1)

		err = models.DB.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), InvoiceResponse{
				Error: &e,
			})
			return
		}

		for _, editable := range update.Items {
			item := editable.model()
			item.InvoiceID = invoice.ID

			err = models.DB.Create(&item).Error
			if err != nil {
				e := err.Error()
				c.JSON(status(err), InvoiceResponse{
					Error: &e,
				})
				return
			}
		}
	}

	if len(updateFields) > 0 {
		err = models.DB.Model(&invoice).Select("", updateFields...).Updates(update.model()).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), InvoiceResponse{
				Error: &e,
			})
			return
		}
	}

	err = invoice.RecalculateTotals(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	err = invoice.UpdateStatus(models.DB, types.Today())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	invoice, err = getInvoice(invoice.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	data := newInvoice(c, invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// @Summary		Record payment
// @Description	Records a payment against the invoice and reconciles its status
// @Tags			Invoices
// @Accept			json
// @Produce		json
// @Success		201		{object}	InvoiceResponse
// @Failure		400		{object}	InvoiceResponse
// @Failure		404		{object}	InvoiceResponse
// @Failure		500		{object}	InvoiceResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			payment	body		InvoicePaymentEditable	true	"Payment"
// @Router			/v4/invoices/{id}/payments [post]
func CreateInvoicePayment(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	var editable InvoicePaymentEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	payment := editable.model()
	payment.InvoiceID = invoice.ID

	err = models.DB.Create(&payment).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	err = invoice.UpdateStatus(models.DB, types.Today())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	invoice, err = getInvoice(invoice.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	data := newInvoice(c, invoice)
	c.JSON(http.StatusCreated, InvoiceResponse{Data: &data})
}

// @Summary		Send invoice
// @Description	Marks the invoice as sent today and reconciles its status
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceResponse
// @Failure		400	{object}	InvoiceResponse
// @Failure		404	{object}	InvoiceResponse
// @Failure		500	{object}	InvoiceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/invoices/{id}/send [post]
func SendInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	today := types.Today()

	// The first send wins, resending does not move the date
	if invoice.SentDate.IsZero() {
		invoice.SentDate = today
		if invoice.Status == models.StatusDraft {
			invoice.Status = models.StatusSent
		}

		err = models.DB.Model(&invoice).
			Select("sent_date", "status").
			Updates(map[string]any{
				"sent_date": invoice.SentDate,
				"status":    invoice.Status,
			}).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), InvoiceResponse{
				Error: &e,
			})
			return
		}
	}

	err = invoice.UpdateStatus(models.DB, today)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	invoice, err = getInvoice(invoice.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	data := newInvoice(c, invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// @Summary		Cancel invoice
// @Description	Cancels the invoice. A cancelled invoice never changes status again.
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceResponse
// @Failure		400	{object}	InvoiceResponse
// @Failure		404	{object}	InvoiceResponse
// @Failure		500	{object}	InvoiceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/invoices/{id}/cancel [post]
func CancelInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&invoice).Update("status", models.StatusCancelled).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	invoice, err = getInvoice(invoice.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	data := newInvoice(c, invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// @Summary		Materialize next invoice
// @Description	Generates the successor of a paid recurring invoice if it is due
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceResponse
// @Success		201	{object}	InvoiceResponse
// @Failure		400	{object}	InvoiceResponse
// @Failure		404	{object}	InvoiceResponse
// @Failure		500	{object}	InvoiceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/invoices/{id}/materialize [post]
func MaterializeInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	invoice, err := getInvoice(uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	next, err := invoice.MaterializeNext(models.DB, types.Today())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	// Nothing due yet
	if next == nil {
		c.JSON(http.StatusOK, InvoiceResponse{})
		return
	}

	created, err := getInvoice(next.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &e,
		})
		return
	}

	data := newInvoice(c, created)
	c.JSON(http.StatusCreated, InvoiceResponse{Data: &data})
}

// @Summary		Delete invoice
// @Description	Deletes an invoice with its items and payments
// @Tags			Invoices
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v4/invoices/{id} [delete]
func DeleteInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoicePayment{}).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&invoice).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
