// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/policy": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["policy"],
                "summary": "Rule table and what the caller may do",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.policyResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/custom-fields/schema": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["custom-fields"],
                "summary": "Active custom fields visible to the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.schemaResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/custom-fields/validate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "With \"field\" set only that field is checked. The result is returned with 200 whether or not the values are valid.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["custom-fields"],
                "summary": "Validate custom values without saving them",
                "parameters": [
                    {"description": "Values to check", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.validateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/validation.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/admin/custom-fields": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List every custom field definition, inactive ones included",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fieldListResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "An omitted key is derived from the name.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create a custom field definition",
                "parameters": [
                    {"description": "Field definition", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createFieldRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.fieldResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/admin/custom-fields/{key}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get one custom field definition",
                "parameters": [{"type": "string", "description": "Field key", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fieldResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "A type change returns a warning; stored values are scanned in the background.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Partially update a custom field definition",
                "parameters": [
                    {"type": "string", "description": "Field key", "name": "key", "in": "path", "required": true},
                    {"description": "Attributes to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateFieldRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fieldResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Stored values are kept and show up as orphans.",
                "tags": ["admin"],
                "summary": "Delete a custom field definition",
                "parameters": [{"type": "string", "description": "Field key", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/admin/custom-fields/{key}/compatibility": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Latest type-change compatibility report for a field",
                "parameters": [{"type": "string", "description": "Field key", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CompatibilityReport"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/actions/{id}/custom": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Fields the caller cannot see are left out; values of deleted fields are listed as orphans.",
                "produces": ["application/json"],
                "tags": ["actions"],
                "summary": "Custom field form of an action",
                "parameters": [{"type": "string", "description": "Action id (act_id)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.recordFormResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Keys the caller cannot edit (hidden, inactive, orphaned) keep their stored value. An editable key left out of the body is cleared.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["actions"],
                "summary": "Replace the editable custom values of an action",
                "parameters": [
                    {"type": "string", "description": "Action id (act_id)", "name": "id", "in": "path", "required": true},
                    {"description": "Custom values", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.replaceCustomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.recordFormResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Option": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "value": {"type": "string"},
                "order": {"type": "integer"}
            }
        },
        "domain.FieldDefinition": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["text", "number", "date", "select", "tags", "bool"]},
                "required": {"type": "boolean"},
                "min": {"type": "number"},
                "max": {"type": "number"},
                "regex": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/domain.Option"}},
                "role_visibility": {"type": "string", "enum": ["All", "SA_PP", "Pilote", "Utilisateur"]},
                "active": {"type": "boolean"},
                "help_text": {"type": "string"},
                "position": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.CompatibilityReport": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "scanned": {"type": "integer"},
                "incompatible": {"type": "integer"},
                "samples": {"type": "array", "items": {"type": "string"}},
                "finished_at": {"type": "string"}
            }
        },
        "form.FieldDescriptor": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "label": {"type": "string"},
                "type": {"type": "string"},
                "widget": {"type": "string"},
                "required": {"type": "boolean"},
                "help_text": {"type": "string"},
                "min": {"type": "number"},
                "max": {"type": "number"},
                "regex": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/domain.Option"}},
                "value": {},
                "error": {"type": "string"},
                "read_only": {"type": "boolean"}
            }
        },
        "form.Orphan": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "value": {}
            }
        },
        "policy.Rule": {
            "type": "object",
            "properties": {
                "resource": {"type": "string"},
                "action": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "validation.Result": {
            "type": "object",
            "properties": {
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "is_valid": {"type": "boolean"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.createFieldRequest": {
            "type": "object",
            "required": ["name", "type"],
            "properties": {
                "key": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["text", "number", "date", "select", "tags", "bool"]},
                "required": {"type": "boolean"},
                "min": {"type": "number"},
                "max": {"type": "number"},
                "regex": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/domain.Option"}},
                "role_visibility": {"type": "string", "enum": ["All", "SA_PP", "Pilote", "Utilisateur"]},
                "active": {"type": "boolean"},
                "help_text": {"type": "string"},
                "position": {"type": "integer"}
            }
        },
        "handler.updateFieldRequest": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "required": {"type": "boolean"},
                "min": {"type": "number"},
                "max": {"type": "number"},
                "clear_bounds": {"type": "boolean"},
                "regex": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/domain.Option"}},
                "role_visibility": {"type": "string"},
                "active": {"type": "boolean"},
                "help_text": {"type": "string"},
                "position": {"type": "integer"}
            }
        },
        "handler.fieldResponse": {
            "type": "object",
            "properties": {
                "field": {"$ref": "#/definitions/domain.FieldDefinition"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.fieldListResponse": {
            "type": "object",
            "properties": {
                "fields": {"type": "array", "items": {"$ref": "#/definitions/domain.FieldDefinition"}}
            }
        },
        "handler.schemaResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/domain.FieldDefinition"}}
            }
        },
        "handler.validateRequest": {
            "type": "object",
            "properties": {
                "values": {"type": "object", "additionalProperties": true},
                "field": {"type": "string"}
            }
        },
        "handler.policyResponse": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "permitted": {"type": "array", "items": {"$ref": "#/definitions/policy.Rule"}},
                "rules": {"type": "array", "items": {"$ref": "#/definitions/policy.Rule"}}
            }
        },
        "handler.replaceCustomRequest": {
            "type": "object",
            "required": ["values"],
            "properties": {
                "values": {"type": "object", "additionalProperties": true}
            }
        },
        "handler.recordFormResponse": {
            "type": "object",
            "properties": {
                "act_id": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/form.FieldDescriptor"}},
                "orphans": {"type": "array", "items": {"$ref": "#/definitions/form.Orphan"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Custom Fields API",
	Description:      "Dynamic custom fields for action records: schema, validation, forms and access policy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
