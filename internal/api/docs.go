package api

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
        "/wallet/info": {
            "get": {
                "description": "Address, format, password hash parameters and balance; no password needed",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Wallet info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WalletInfo"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/verify": {
            "post": {
                "description": "Decrypts the wallet and checks the key against its address",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Verify wallet password",
                "parameters": [
                    {"description": "Password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.VerifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.VerifyResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/balance": {
            "get": {
                "description": "SOL and USDC balance of the wallet address with the USDC rate",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Wallet balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BalanceResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/qr": {
            "get": {
                "description": "PNG QR code of the wallet address",
                "produces": ["image/png"],
                "tags": ["wallet"],
                "summary": "Address QR code",
                "parameters": [
                    {"type": "integer", "description": "Image size in pixels", "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "error": {"type": "string"}}
        },
        "model.VerifyRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "model.VerifyResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "files": {"type": "array", "items": {"type": "string"}},
                "format": {"type": "string"},
                "pwhash": {"type": "string"},
                "verified": {"type": "boolean"}
            }
        },
        "model.WalletInfo": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "balance": {"$ref": "#/definitions/model.BalanceResponse"},
                "files": {"type": "array", "items": {"type": "string"}},
                "format": {"type": "string"},
                "key_share_count": {"type": "integer"},
                "pwhash": {"type": "string"},
                "recovery_threshold": {"type": "integer"},
                "share_indices": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "model.BalanceResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "currency": {"type": "string"},
                "error": {"type": "string"},
                "rate": {"type": "string"},
                "sol": {"type": "string"},
                "usdc": {"type": "string"},
                "usdc_value": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "shardwallet API",
	Description:      "Read-only endpoints for a local Solana wallet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
