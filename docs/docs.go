// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package docs registers the OpenAPI document served at /swagger.
// Maintained by hand; keep it in sync with the handlers in
// internal/api when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe, reports catalog size once the index is built",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Index not built"}}
            }
        },
        "/api/v1/movies/suggest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["movies"],
                "summary": "Live-typing title suggestions",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true, "description": "Partial title"},
                    {"type": "integer", "name": "limit", "in": "query", "description": "Maximum suggestions"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Missing query"}}
            }
        },
        "/api/v1/movies/resolve": {
            "get": {
                "produces": ["application/json"],
                "tags": ["movies"],
                "summary": "Fuzzy-resolve a query to catalog titles",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true, "description": "Free-text query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No close match"}}
            }
        },
        "/api/v1/recommendations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["movies"],
                "summary": "Recommend movies for a query or an exact title",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "description": "Free-text query"},
                    {"type": "string", "name": "title", "in": "query", "description": "Exact catalog title"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No close match or unknown title"}}
            }
        },
        "/api/v1/assistant/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assistant"],
                "summary": "One assistant chat turn",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Assistant not configured"}}
            }
        },
        "/api/v1/assistant/ws": {
            "get": {
                "tags": ["assistant"],
                "summary": "Assistant chat over a websocket",
                "responses": {"101": {"description": "Switching protocols"}}
            }
        },
        "/api/v1/assistant/quiz/question": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assistant"],
                "summary": "Deal a trivia question",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Assistant not configured"}}
            }
        },
        "/api/v1/assistant/quiz/answer": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assistant"],
                "summary": "Grade the answer to the open trivia question",
                "responses": {"200": {"description": "OK"}, "409": {"description": "No pending question"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Kinograph API",
	Description:      "Content-based movie recommendations with an assistant sidebar.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
