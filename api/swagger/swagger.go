package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TVGW Winterplan API",
        "description": "Constraint checking and slot filling for the winter training roster",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Audit", "description": "Plan rule checking"},
        {"name": "Populate", "description": "Automatic slot filling"},
        {"name": "Plan", "description": "Plan views"},
        {"name": "Reports", "description": "File exports"},
        {"name": "Analysis", "description": "Season statistics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/audit": {
            "post": {
                "tags": ["Audit"],
                "summary": "Audit a plan against every club rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuditRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/populate": {
            "post": {
                "tags": ["Populate"],
                "summary": "Fill open catalog slots with legal player groups",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PopulateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/populate/save": {
            "post": {
                "tags": ["Populate"],
                "summary": "Persist a reviewed populate proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SavePlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/plan/weeks": {
            "get": {
                "tags": ["Plan"],
                "summary": "Plan rows of one ISO week",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/plan/weeks/{year}/{week}": {
            "get": {
                "tags": ["Plan"],
                "summary": "Plan rows of one ISO week, path variant",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "week", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/plan/players/{name}": {
            "get": {
                "tags": ["Plan"],
                "summary": "Every booking of one player",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/violations.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download all audit findings as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/reports/violations.pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download all audit findings as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/reports/usage.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the weekly usage report as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/analysis/distribution": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Per-player booking distribution",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analysis/variety": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Opponent and partner variety per player",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analysis/pairing": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Shared-court counts for every player pair",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analysis/costs": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Season court cost split per player",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analysis/system": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PlanRowInput": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "weekday": {"type": "string"},
                "slot": {"type": "string"},
                "type": {"type": "string"},
                "players": {"type": "string"}
            },
            "required": ["date", "slot", "players"]
        },
        "AuditRequest": {
            "type": "object",
            "properties": {
                "rows": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PlanRowInput"}
                }
            },
            "required": ["rows"]
        },
        "PopulateRequest": {
            "type": "object",
            "properties": {
                "maxSlots": {"type": "integer"},
                "fromScratch": {"type": "boolean"}
            }
        },
        "SavePlanRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"}
            },
            "required": ["proposalId"]
        },
        "Violation": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "weekday": {"type": "string"},
                "slot": {"type": "string"},
                "type": {"type": "string"},
                "players": {"type": "string"},
                "affected_player": {"type": "string"},
                "rule": {"type": "string"},
                "detail": {"type": "string"}
            }
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
