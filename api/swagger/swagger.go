package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Panel API",
        "description": "Backend-for-frontend for the institution admin panel",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Workspace", "description": "Staff teachers-management workspace"},
        {"name": "Reference", "description": "Departments, positions, roles, faculty"},
        {"name": "Export", "description": "Roster downloads"},
        {"name": "Settings", "description": "Account settings"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/workspace": {
            "get": {
                "tags": ["Workspace"],
                "summary": "Get workspace snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/workspace/scope": {
            "put": {
                "tags": ["Workspace"],
                "summary": "Select department scope",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetScopeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/workspace/refresh": {
            "post": {
                "tags": ["Workspace"],
                "summary": "Refresh roster",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/workspace/form": {
            "post": {
                "tags": ["Workspace"],
                "summary": "Open an employee form",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenFormRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A form session is already open"}
                }
            },
            "delete": {
                "tags": ["Workspace"],
                "summary": "Cancel the open form",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/workspace/form/fields": {
            "patch": {
                "tags": ["Workspace"],
                "summary": "Edit a form field",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetFieldRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/workspace/form/submit": {
            "post": {
                "tags": ["Workspace"],
                "summary": "Submit the open form",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate email"}
                }
            }
        },
        "/staff/workspace/employees/{id}": {
            "delete": {
                "tags": ["Workspace"],
                "summary": "Delete an employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not in the active scope"}
                }
            }
        },
        "/staff/workspace/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Download the roster",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/staff/reference/departments": {
            "get": {
                "tags": ["Reference"],
                "summary": "List departments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/reference/positions": {
            "get": {
                "tags": ["Reference"],
                "summary": "List positions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/reference/roles": {
            "get": {
                "tags": ["Reference"],
                "summary": "List roles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/reference/faculty": {
            "get": {
                "tags": ["Reference"],
                "summary": "Get faculty info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/change-password": {
            "post": {
                "tags": ["Settings"],
                "summary": "Change password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Validation error"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "SetScopeRequest": {
            "type": "object",
            "properties": {
                "departmentId": {"type": "string"}
            }
        },
        "OpenFormRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["create", "edit"]},
                "targetId": {"type": "integer"}
            },
            "required": ["mode"]
        },
        "SetFieldRequest": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "value": {"type": "string"}
            },
            "required": ["field"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "newPassword": {"type": "string"},
                "confirmPassword": {"type": "string"}
            },
            "required": ["newPassword", "confirmPassword"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "field_errors": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
