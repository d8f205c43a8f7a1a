package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
)

// SchemaHandler serves the read side used by form renderers: the schema,
// dry-run validation and the policy table.
type SchemaHandler struct {
	schema  ports.SchemaReader
	records ports.RecordService
	policy  *policy.Table
}

func NewSchemaHandler(schema ports.SchemaReader, records ports.RecordService, rules *policy.Table) *SchemaHandler {
	return &SchemaHandler{schema: schema, records: records, policy: rules}
}

// Schema handles GET /v1/custom-fields/schema.
//
// @Summary      Active custom fields visible to the caller
// @Tags         custom-fields
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  schemaResponse
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/custom-fields/schema [get]
func (h *SchemaHandler) Schema(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	schema, err := h.schema.Get(c.Request().Context())
	if err != nil {
		return err
	}
	visible := schema.VisibleTo(p).Active()
	return c.JSON(http.StatusOK, schemaResponse{Version: visible.Version, Fields: visible.Fields})
}

// Validate handles POST /v1/custom-fields/validate.
//
// @Summary      Validate custom values without saving them
// @Description  With "field" set only that field is checked. The result is returned with 200 whether or not the values are valid.
// @Tags         custom-fields
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validateRequest  true  "Values to check"
// @Success      200   {object}  validateResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/custom-fields/validate [post]
func (h *SchemaHandler) Validate(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req validateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.records.Validate(c.Request().Context(), p, req.Values, req.Field)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Policy handles GET /v1/policy.
//
// @Summary      Rule table and what the caller may do
// @Tags         policy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  policyResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/policy [get]
func (h *SchemaHandler) Policy(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	permitted := h.policy.Permitted(p.Role)
	if permitted == nil {
		permitted = []policy.Rule{}
	}
	return c.JSON(http.StatusOK, policyResponse{
		Role:      p.Role,
		Permitted: permitted,
		Rules:     h.policy.Rules(),
	})
}
