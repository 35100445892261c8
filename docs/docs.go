// Package docs holds the OpenAPI document of the ops API, laid out the way
// `swag init -g cmd/scheduler/main.go` emits it from the handler annotations.
// Regenerate it with that command after changing a route or DTO.
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
        "/api/v1/runs": {
            "get": {
                "description": "Registered collectors, the one running now and the last result of each.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "runs"
                ],
                "summary": "List collector runs",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.RunsResponseDTO"
                        }
                    }
                }
            }
        },
        "/api/v1/runs/{collector}": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Starts one run in the background. Only one run executes at a time.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "runs"
                ],
                "summary": "Start a collector run",
                "parameters": [
                    {
                        "enum": [
                            "render",
                            "poll"
                        ],
                        "type": "string",
                        "description": "Collector name",
                        "name": "collector",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/dto.RunAcceptedDTO"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness probe. Names the collector currently running, if any.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ops"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.HealthDTO"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponseDTO": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                }
            }
        },
        "dto.HealthDTO": {
            "type": "object",
            "properties": {
                "running": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "dto.RunAcceptedDTO": {
            "type": "object",
            "properties": {
                "collector": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "dto.RunDTO": {
            "type": "object",
            "properties": {
                "collected": {
                    "type": "integer"
                },
                "collector": {
                    "type": "string"
                },
                "duration_ms": {
                    "type": "integer"
                },
                "error": {
                    "type": "string"
                },
                "finished_at": {
                    "type": "string"
                },
                "run_id": {
                    "type": "string"
                },
                "start_row": {
                    "type": "integer"
                },
                "started_at": {
                    "type": "string"
                },
                "write_error": {
                    "type": "string"
                },
                "written": {
                    "type": "integer"
                }
            }
        },
        "dto.RunsResponseDTO": {
            "type": "object",
            "properties": {
                "collectors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "running": {
                    "type": "string"
                },
                "runs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.RunDTO"
                    }
                }
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
	Title:            "Forum Harvest Ops API",
	Description:      "Starts collector runs and reports their last results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
