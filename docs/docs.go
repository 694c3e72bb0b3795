// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and JWT token."
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login with username or email",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh the access token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Close the current session",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/oauth/{provider}": {
            "get": {
                "tags": ["auth"],
                "summary": "Begin delegated login with a provider",
                "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}],
                "responses": {"302": {"description": "Found"}, "404": {"description": "Not Found"}}
            }
        },
        "/auth/oauth/{provider}/callback": {
            "get": {
                "tags": ["auth"],
                "summary": "Complete delegated login",
                "parameters": [
                    {"name": "provider", "in": "path", "required": true, "type": "string"},
                    {"name": "code", "in": "query", "required": true, "type": "string"},
                    {"name": "state", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/transactions": {
            "get": {
                "tags": ["transactions"],
                "summary": "List the caller's transactions, newest first",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "tags": ["transactions"],
                "summary": "Create a transaction owned by the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TransactionRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/transactions/{id}": {
            "put": {
                "tags": ["transactions"],
                "summary": "Update an owned transaction",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TransactionRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["transactions"],
                "summary": "Delete an owned transaction",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/summary": {
            "get": {
                "tags": ["transactions"],
                "summary": "Income total, expense total and balance over the caller's ledger",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/profile": {
            "get": {
                "tags": ["profile"],
                "summary": "The caller's profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "tags": ["profile"],
                "summary": "Update bio and avatar",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "bio", "in": "formData", "type": "string"},
                    {"name": "avatar", "in": "formData", "type": "file"}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/me": {
            "get": {
                "tags": ["users"],
                "summary": "The authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["users"],
                "summary": "List all users (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/users/{id}": {
            "delete": {
                "tags": ["users"],
                "summary": "Delete a user and everything they own (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password", "password_confirm"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "password_confirm": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["login", "password"],
            "properties": {
                "login": {"type": "string"},
                "password": {"type": "string"},
                "remember": {"type": "boolean"}
            }
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "user": {"type": "object"}
            }
        },
        "handler.TransactionRequest": {
            "type": "object",
            "required": ["name", "value"],
            "properties": {
                "name": {"type": "string"},
                "value": {"type": "string", "example": "-50.25"},
                "description": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Fintrack API",
	Description:      "Personal finance tracker with ownership-scoped transactions, profiles and delegated login.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
