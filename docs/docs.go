// Package docs registers the OpenAPI document of the quizboard API with swag.
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Operator login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LoginResponse"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/quizzes": {
            "get": {
                "tags": ["quizzes"],
                "summary": "Newest quizzes first",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.QuizSummary"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["quizzes"],
                "summary": "Store a quiz",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/model.Quiz"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Quiz"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/quizzes/{id}": {
            "get": {
                "tags": ["quizzes"],
                "summary": "Read a quiz",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Quiz"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/rooms": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rooms"],
                "summary": "Create a room for a quiz",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateRoomRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.CreateRoomResponse"}}}
            }
        },
        "/rooms/{code}": {
            "get": {
                "tags": ["rooms"],
                "summary": "Read a room",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "code", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Room"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/rooms/{code}/join": {
            "post": {
                "tags": ["rooms"],
                "summary": "Join a room as a player",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "code", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/model.JoinRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PlayerJoinResponse"}},
                    "403": {"description": "Wrong pin"},
                    "409": {"description": "Room is full"}
                }
            }
        },
        "/rooms/{code}/leaderboard": {
            "get": {
                "tags": ["rooms"],
                "summary": "Players ordered by score",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "code", "required": true},
                    {"type": "integer", "in": "query", "name": "top"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rooms/{code}/qr": {
            "get": {
                "tags": ["rooms"],
                "summary": "PNG QR code of the join link",
                "produces": ["image/png"],
                "parameters": [{"type": "string", "in": "path", "name": "code", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rooms/{code}/state": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["game"],
                "summary": "Merge state and players into a room",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "code", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/model.RoomPatch"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Room"}}}
            }
        },
        "/rooms/{code}/questions/open": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["game"],
                "summary": "Reveal a question",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "code", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.OpenQuestionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Room"}}}
            }
        },
        "/rooms/{code}/judge": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["game"],
                "summary": "Judge the current answer",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "code", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.JudgeRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Room"}}}
            }
        },
        "/rooms/{code}/questions/end": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["game"],
                "summary": "Close the open question without scoring",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "code", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Room"}}}
            }
        },
        "/rooms/{code}/buzz": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["game"],
                "summary": "Buzz in on the open question",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "code", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Room"}},
                    "409": {"description": "Not eligible"}
                }
            }
        }
    },
    "definitions": {
        "handler.JudgeRequest": {"type": "object", "properties": {"correct": {"type": "boolean"}}},
        "handler.OpenQuestionRequest": {"type": "object", "properties": {"categoryIdx": {"type": "integer"}, "questionIdx": {"type": "integer"}}},
        "model.LoginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "model.LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}, "hostId": {"type": "string"}}},
        "model.QuizSummary": {"type": "object", "properties": {"id": {"type": "string"}, "title": {"type": "string"}, "author": {"type": "string"}, "createdAt": {"type": "string"}}},
        "model.Question": {"type": "object", "properties": {"index": {"type": "integer"}, "text": {"type": "string"}, "answer": {"type": "string"}}},
        "model.Category": {"type": "object", "properties": {"name": {"type": "string"}, "questions": {"type": "array", "items": {"$ref": "#/definitions/model.Question"}}}},
        "model.Board": {"type": "object", "properties": {"categories": {"type": "array", "items": {"$ref": "#/definitions/model.Category"}}}},
        "model.Quiz": {"type": "object", "properties": {"id": {"type": "string"}, "title": {"type": "string"}, "author": {"type": "string"}, "boards": {"type": "array", "items": {"$ref": "#/definitions/model.Board"}}, "createdAt": {"type": "string"}}},
        "model.Player": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "score": {"type": "integer"}, "joinedAt": {"type": "string"}}},
        "model.CurrentCell": {"type": "object", "properties": {"categoryIdx": {"type": "integer"}, "questionIdx": {"type": "integer"}, "points": {"type": "integer"}, "text": {"type": "string"}, "answer": {"type": "string"}}},
        "model.GameState": {"type": "object", "properties": {
            "boardIndex": {"type": "integer"},
            "used": {"type": "array", "items": {"type": "string"}},
            "currentCell": {"$ref": "#/definitions/model.CurrentCell"},
            "buzzMode": {"type": "boolean"},
            "buzzQueue": {"type": "array", "items": {"type": "string"}},
            "currentPlayerId": {"type": "string"},
            "flashSeq": {"type": "integer"},
            "flashType": {"type": "string", "enum": ["correct", "wrong"]}
        }},
        "model.Room": {"type": "object", "properties": {
            "code": {"type": "string"},
            "gameName": {"type": "string"},
            "quizId": {"type": "string"},
            "quizTitle": {"type": "string"},
            "hostName": {"type": "string"},
            "maxPlayers": {"type": "integer"},
            "hasPin": {"type": "boolean"},
            "status": {"type": "string"},
            "players": {"type": "array", "items": {"$ref": "#/definitions/model.Player"}},
            "state": {"$ref": "#/definitions/model.GameState"},
            "createdAt": {"type": "string"},
            "updatedAt": {"type": "string"}
        }},
        "model.RoomPatch": {"type": "object", "properties": {"state": {"$ref": "#/definitions/model.GameState"}, "players": {"type": "array", "items": {"$ref": "#/definitions/model.Player"}}}},
        "model.CreateRoomRequest": {"type": "object", "properties": {
            "gameName": {"type": "string"},
            "hostName": {"type": "string"},
            "maxPlayers": {"type": "integer"},
            "pin": {"type": "string"},
            "quizId": {"type": "string"},
            "quizTitle": {"type": "string"},
            "initialState": {"$ref": "#/definitions/model.GameState"}
        }},
        "model.CreateRoomResponse": {"type": "object", "properties": {"room": {"$ref": "#/definitions/model.Room"}, "hostToken": {"type": "string"}}},
        "model.JoinRequest": {"type": "object", "properties": {"name": {"type": "string"}, "pin": {"type": "string"}}},
        "model.PlayerJoinResponse": {"type": "object", "properties": {"room": {"$ref": "#/definitions/model.Room"}, "player": {"$ref": "#/definitions/model.Player"}, "token": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "quizboard API",
	Description:      "Rooms, quizzes and the host and buzzer commands of a quizboard game.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
