// Package docs содержит Swagger-описание HTTP API. Файл повторяет вывод swag init
// и перезаписывается командой go generate ./cmd/fintrack.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "description": "Аутентифицирует пользователя по email и паролю. Возвращает JWT.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Авторизация пользователя",
                "parameters": [
                    {
                        "description": "Учетные данные пользователя",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/login.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.AuthResponse"}},
                    "400": {"description": "ValidationError или InvalidCredentialsError", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много попыток", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Возвращает id и email из JWT.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/me.Response"}},
                    "401": {"description": "Отсутствующий или недействительный токен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Создаёт пользователя и возвращает JWT. Хэш пароля в ответ не попадает.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {
                        "description": "Данные пользователя",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/register.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.AuthResponse"}},
                    "400": {"description": "ValidationError или DuplicateEmailError", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "description": "Возвращает только email пользователя по его идентификатору.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Email пользователя",
                "parameters": [
                    {"type": "string", "description": "Идентификатор пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.EmailResponse"}},
                    "404": {"description": "NotFoundError", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "login.Request": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "password": {"type": "string", "example": "pw123456"}
            }
        },
        "me.Response": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "id": {"type": "string", "example": "3f1c2d4e-0000-0000-0000-000000000000"}
            }
        },
        "register.Request": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "name": {"type": "string", "example": "Alice"},
                "password": {"type": "string", "example": "pw123456"}
            }
        },
        "response.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string", "example": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."},
                "user": {}
            }
        },
        "response.EmailResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "field Email is a required field"},
                "kind": {"type": "string", "example": "ValidationError"},
                "status": {"type": "string", "example": "Error"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fintrack Auth API",
	Description:      "Регистрация, вход и выдача JWT для приложения личных финансов",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
