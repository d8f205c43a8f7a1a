package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/core/ports"
)

// RecordHandler serves the custom values of action records.
type RecordHandler struct {
	service ports.RecordService
}

func NewRecordHandler(service ports.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// Get handles GET /v1/actions/:id/custom.
//
// @Summary      Custom field form of an action
// @Description  Fields the caller cannot see are left out; values of deleted fields are listed as orphans.
// @Tags         actions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Action id (act_id)"
// @Success      200  {object}  recordFormResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/actions/{id}/custom [get]
func (h *RecordHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	rf, err := h.service.Form(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordForm(rf))
}

// Replace handles PUT /v1/actions/:id/custom.
//
// @Summary      Replace the editable custom values of an action
// @Description  Keys the caller cannot edit (hidden, inactive, orphaned) keep their stored value. An editable key left out of the body is cleared.
// @Tags         actions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Action id (act_id)"
// @Param        body  body      replaceCustomRequest  true  "Custom values"
// @Success      200   {object}  recordFormResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/actions/{id}/custom [put]
func (h *RecordHandler) Replace(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req replaceCustomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rf, err := h.service.ReplaceCustom(c.Request().Context(), p, c.Param("id"), req.Values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordForm(rf))
}
