package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/core/ports"
)

// FieldHandler serves the administrative custom field endpoints.
type FieldHandler struct {
	service ports.FieldService
}

func NewFieldHandler(service ports.FieldService) *FieldHandler {
	return &FieldHandler{service: service}
}

// List handles GET /v1/admin/custom-fields.
//
// @Summary      List every custom field definition, inactive ones included
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  fieldListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/admin/custom-fields [get]
func (h *FieldHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	defs, err := h.service.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fieldListResponse{Fields: defs})
}

// Get handles GET /v1/admin/custom-fields/:key.
//
// @Summary      Get one custom field definition
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Field key"
// @Success      200  {object}  fieldResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/custom-fields/{key} [get]
func (h *FieldHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	def, err := h.service.Get(c.Request().Context(), p, c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fieldResponse{Field: *def})
}

// Create handles POST /v1/admin/custom-fields.
//
// @Summary      Create a custom field definition
// @Description  An omitted key is derived from the name.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createFieldRequest  true  "Field definition"
// @Success      201   {object}  fieldResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/admin/custom-fields [post]
func (h *FieldHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createFieldRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), p, req.toInput())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/admin/custom-fields/"+res.Field.Key)
	return c.JSON(http.StatusCreated, fieldResponse{Field: res.Field, Warnings: res.Warnings})
}

// Update handles PATCH /v1/admin/custom-fields/:key.
//
// @Summary      Partially update a custom field definition
// @Description  A type change returns a warning; stored values are scanned in the background.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        key   path      string              true  "Field key"
// @Param        body  body      updateFieldRequest  true  "Attributes to change"
// @Success      200   {object}  fieldResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/custom-fields/{key} [patch]
func (h *FieldHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateFieldRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Update(c.Request().Context(), p, c.Param("key"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fieldResponse{Field: res.Field, Warnings: res.Warnings})
}

// Delete handles DELETE /v1/admin/custom-fields/:key.
//
// @Summary      Delete a custom field definition
// @Description  Stored values are kept and show up as orphans.
// @Tags         admin
// @Security     BearerAuth
// @Param        key  path  string  true  "Field key"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/custom-fields/{key} [delete]
func (h *FieldHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Compatibility handles GET /v1/admin/custom-fields/:key/compatibility.
//
// @Summary      Latest type-change compatibility report for a field
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Field key"
// @Success      200  {object}  domain.CompatibilityReport
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/custom-fields/{key}/compatibility [get]
func (h *FieldHandler) Compatibility(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	report, err := h.service.Compatibility(c.Request().Context(), p, c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
