// Package docs registers the OpenAPI description served at /swagger when
// SWAGGER_ENABLED is set. Regenerate from the handler annotations with:
//
//	swag init -g cmd/courtdesk/main.go -o docs
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
        "/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a user",
                "operationId": "signUp",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignUpRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Invalid email or weak password", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/signin": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "operationId": "signIn",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignInRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Session"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/signout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Revoke the current session",
                "operationId": "signOut",
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Current user profile",
                "operationId": "currentUser",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/me/permissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Permissions"],
                "summary": "Caller's roles and permissions",
                "operationId": "myPermissions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/permission.Grant"}}, "503": {"description": "Permissions unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/me/permissions/check": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Permissions"],
                "summary": "Evaluate a permission requirement",
                "operationId": "checkPermissions",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CheckPermissionsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CheckPermissionsResponse"}}}
            }
        },
        "/{entity}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Entities"],
                "summary": "List records of an entity",
                "operationId": "listEntities",
                "parameters": [
                    {"$ref": "#/parameters/entity"},
                    {"type": "string", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "headers": {"ETag": {"type": "string"}}, "schema": {"$ref": "#/definitions/handlers.DataResponse"}},
                    "304": {"description": "Not Modified"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Query failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Entities"],
                "summary": "Create a record",
                "operationId": "createEntity",
                "parameters": [
                    {"$ref": "#/parameters/entity"},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.DataResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Unique value already in use", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Mutation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/{entity}/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Entities"],
                "summary": "Get one record",
                "operationId": "getEntity",
                "parameters": [{"$ref": "#/parameters/entity"}, {"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DataResponse"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["Entities"],
                "summary": "Update a record",
                "operationId": "updateEntity",
                "parameters": [{"$ref": "#/parameters/entity"}, {"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DataResponse"}}, "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}, "409": {"description": "Unique value already in use", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Entities"],
                "summary": "Delete a record",
                "operationId": "deleteEntity",
                "parameters": [{"$ref": "#/parameters/entity"}, {"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DataResponse"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/analytics/access/{series}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Analytics"],
                "summary": "Access analytics series",
                "operationId": "accessSeries",
                "parameters": [
                    {"type": "string", "name": "series", "in": "path", "required": true, "enum": ["hourly", "daily", "locations"]},
                    {"type": "string", "name": "window", "in": "query", "default": "7d", "enum": ["24h", "7d", "30d", "90d"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid window", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        }
    },
    "parameters": {
        "entity": {"type": "string", "name": "entity", "in": "path", "required": true,
            "enum": ["cases", "filings", "dispatches", "dispatch-compliances", "fines", "fine-reductions", "case-routings", "hearings"]},
        "id": {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string"},
                "notice": {"$ref": "#/definitions/notify.Notice"}
            }
        },
        "handlers.DataResponse": {
            "type": "object",
            "properties": {"data": {}, "notice": {"$ref": "#/definitions/notify.Notice"}}
        },
        "notify.Notice": {
            "type": "object",
            "properties": {"level": {"type": "string", "enum": ["success", "error"]}, "message": {"type": "string"}}
        },
        "handlers.SignUpRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "full_name": {"type": "string"}, "position": {"type": "string"}, "unit": {"type": "string"}}
        },
        "handlers.SignInRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "services.Session": {
            "type": "object",
            "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}, "expires_at": {"type": "string"}, "user": {"$ref": "#/definitions/domain.User"}}
        },
        "domain.User": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "full_name": {"type": "string"}, "position": {"type": "string"}, "unit": {"type": "string"}, "role": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}
        },
        "permission.Grant": {
            "type": "object",
            "properties": {"roles": {"type": "array", "items": {"type": "string"}}, "permissions": {"type": "array", "items": {"type": "string"}}, "is_admin": {"type": "boolean"}}
        },
        "handlers.CheckPermissionsRequest": {
            "type": "object",
            "properties": {"any": {"type": "array", "items": {"type": "string"}}, "all": {"type": "array", "items": {"type": "string"}}, "admin": {"type": "boolean"}, "hide_when_denied": {"type": "boolean"}, "denied_message": {"type": "string"}}
        },
        "handlers.CheckPermissionsResponse": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["indeterminate", "granted", "denied"]},
                "affordance": {"type": "object", "properties": {"decision": {"type": "string"}, "visible": {"type": "boolean"}, "enabled": {"type": "boolean"}, "tooltip": {"type": "string"}}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Courtdesk API",
	Description:      "Case, filing, dispatch, fine, routing and hearing records for court clerks, plus access analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
