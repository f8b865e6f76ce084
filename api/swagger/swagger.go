package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Schedule Optimizer API",
        "description": "CP-SAT backed multi-semester course plan solver",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    }
                }
            }
        },
        "/api/v1/plans/solve": {
            "post": {
                "summary": "Solve for a multi-semester course plan",
                "responses": {
                    "200": {
                        "description": "SolveResponse"
                    }
                }
            }
        },
        "/api/v1/plans/solve/{term_id}": {
            "post": {
                "summary": "Solve using catalog data ingested for the given term",
                "responses": {
                    "200": {
                        "description": "SolveResponse"
                    }
                }
            }
        },
        "/api/v1/plans/export": {
            "post": {
                "summary": "Solve and export the resulting plan as CSV or PDF",
                "responses": {
                    "200": {
                        "description": "file"
                    }
                }
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
