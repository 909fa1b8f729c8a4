package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lexicon LMS API",
        "description": "Document lifecycle and teacher notification service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Documents", "description": "Document upload, download and review"},
        {"name": "Notifications", "description": "Teacher notification feed"},
        {"name": "Contact", "description": "Encrypted contact messages"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/documents": {
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a document",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed"}
                }
            },
            "get": {
                "tags": ["Documents"],
                "summary": "List documents by association",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get document metadata",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document and its notifications",
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/documents/{id}/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a document binary",
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "File content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/documents/{id}/status": {
            "put": {
                "tags": ["Documents"],
                "summary": "Change a document's review status",
                "responses": {
                    "204": {"description": "Updated"},
                    "400": {"description": "Validation failed"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/courses/{id}/documents/export": {
            "get": {
                "tags": ["Documents"],
                "summary": "Export a course's document inventory as CSV or PDF",
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "File content"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications visible to the current user",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete a notification for all users",
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "responses": {
                    "204": {"description": "Updated"}
                }
            }
        },
        "/notifications/{id}/unread": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as unread",
                "responses": {
                    "204": {"description": "Updated"}
                }
            }
        },
        "/contact": {
            "post": {
                "tags": ["Contact"],
                "summary": "Submit a contact message",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed"}
                }
            },
            "get": {
                "tags": ["Contact"],
                "summary": "List contact message summaries",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/contact/{id}": {
            "get": {
                "tags": ["Contact"],
                "summary": "Decrypt a stored contact message",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
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
