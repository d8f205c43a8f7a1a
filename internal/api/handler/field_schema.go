package handler

import (
	"time"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/form"
	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/core/validation"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// --- Request / Response types ---

type optionRequest struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
	Order int    `json:"order"`
}

type createFieldRequest struct {
	Key            string          `json:"key"             validate:"omitempty,fieldkey,max=64"`
	Name           string          `json:"name"            validate:"required,max=120"`
	Type           string          `json:"type"            validate:"required,oneof=text number date select tags bool"`
	Required       bool            `json:"required"`
	Min            *float64        `json:"min"`
	Max            *float64        `json:"max"`
	Regex          string          `json:"regex"`
	Options        []optionRequest `json:"options"         validate:"dive"`
	RoleVisibility string          `json:"role_visibility" validate:"omitempty,oneof=All SA_PP Pilote Utilisateur"`
	Active         *bool           `json:"active"`
	HelpText       string          `json:"help_text"       validate:"max=500"`
	Position       int             `json:"position"        validate:"gte=0"`
}

// updateFieldRequest is a partial update: omitted attributes keep their
// stored value. options, when present, replaces the whole list.
type updateFieldRequest struct {
	Key            *string          `json:"key"`
	Name           *string          `json:"name"            validate:"omitempty,max=120"`
	Type           *string          `json:"type"            validate:"omitempty,oneof=text number date select tags bool"`
	Required       *bool            `json:"required"`
	Min            *float64         `json:"min"`
	Max            *float64         `json:"max"`
	ClearBounds    bool             `json:"clear_bounds"`
	Regex          *string          `json:"regex"`
	Options        *[]optionRequest `json:"options"         validate:"omitempty,dive"`
	RoleVisibility *string          `json:"role_visibility" validate:"omitempty,oneof=All SA_PP Pilote Utilisateur"`
	Active         *bool            `json:"active"`
	HelpText       *string          `json:"help_text"       validate:"omitempty,max=500"`
	Position       *int             `json:"position"        validate:"omitempty,gte=0"`
}

type fieldResponse struct {
	Field    domain.FieldDefinition `json:"field"`
	Warnings []string               `json:"warnings,omitempty"`
}

type fieldListResponse struct {
	Fields []domain.FieldDefinition `json:"fields"`
}

type schemaResponse struct {
	Version time.Time                `json:"version"`
	Fields  []domain.FieldDefinition `json:"fields"`
}

type validateRequest struct {
	Values domain.ValueMap `json:"values"`
	// Field, when set, validates that single touched field.
	Field string `json:"field"`
}

type validateResponse = validation.Result

type policyResponse struct {
	Role      domain.Role   `json:"role"`
	Permitted []policy.Rule `json:"permitted"`
	Rules     []policy.Rule `json:"rules"`
}

type replaceCustomRequest struct {
	Values domain.ValueMap `json:"values" validate:"required"`
}

type recordFormResponse struct {
	ActID   string                 `json:"act_id"`
	Fields  []form.FieldDescriptor `json:"fields"`
	Orphans []form.Orphan          `json:"orphans"`
}

// --- Mappers ---

func toOptions(in []optionRequest) []domain.Option {
	if in == nil {
		return nil
	}
	out := make([]domain.Option, len(in))
	for i, o := range in {
		out[i] = domain.Option{Label: o.Label, Value: o.Value, Order: o.Order}
	}
	return out
}

func (r createFieldRequest) toInput() ports.CreateFieldInput {
	return ports.CreateFieldInput{
		Key:            r.Key,
		Name:           r.Name,
		Type:           domain.FieldType(r.Type),
		Required:       r.Required,
		Min:            r.Min,
		Max:            r.Max,
		Regex:          r.Regex,
		Options:        toOptions(r.Options),
		RoleVisibility: domain.Visibility(r.RoleVisibility),
		Active:         r.Active,
		HelpText:       r.HelpText,
		Position:       r.Position,
	}
}

func (r updateFieldRequest) toInput() ports.UpdateFieldInput {
	in := ports.UpdateFieldInput{
		Key:         r.Key,
		Name:        r.Name,
		Required:    r.Required,
		Min:         r.Min,
		Max:         r.Max,
		ClearBounds: r.ClearBounds,
		Regex:       r.Regex,
		Active:      r.Active,
		HelpText:    r.HelpText,
		Position:    r.Position,
	}
	if r.Type != nil {
		t := domain.FieldType(*r.Type)
		in.Type = &t
	}
	if r.RoleVisibility != nil {
		v := domain.Visibility(*r.RoleVisibility)
		in.RoleVisibility = &v
	}
	if r.Options != nil {
		opts := toOptions(*r.Options)
		if opts == nil {
			opts = []domain.Option{}
		}
		in.Options = &opts
	}
	return in
}

func toRecordForm(rf *ports.RecordForm) recordFormResponse {
	orphans := rf.Form.Orphans
	if orphans == nil {
		orphans = []form.Orphan{}
	}
	return recordFormResponse{ActID: rf.RecordID, Fields: rf.Form.Fields, Orphans: orphans}
}
