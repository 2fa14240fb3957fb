package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func registerSwaggerRoutes(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/", http.StatusMovedPermanently)
	})

	r.Get("/swagger/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	r.Get("/swagger/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Ledger Engine API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Ledger Engine API",
    "version": "1.0.0"
  },
  "security": [{"BasicAuth": []}],
  "paths": {
    "/accounts": {
      "get": {
        "summary": "Search accounts",
        "parameters": [
          {"name": "accountNumber", "in": "query", "schema": {"type": "string", "example": "GB82WEST12345698765432"}},
          {"name": "currency", "in": "query", "schema": {"type": "string", "enum": ["CHF", "DKK", "EUR", "GBP", "SEK", "USD"]}},
          {"name": "balance", "in": "query", "schema": {"type": "string", "example": "100"}},
          {"name": "status", "in": "query", "schema": {"type": "string", "enum": ["ACTIVE", "DISABLED", "DELETED"]}},
          {"name": "orderBy", "in": "query", "schema": {"type": "string", "enum": ["accountNumber", "currency", "balance", "status"]}},
          {"name": "sortOrder", "in": "query", "schema": {"type": "string", "enum": ["asc", "desc"], "default": "desc"}}
        ],
        "responses": {
          "200": {"description": "Matching accounts"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"}
        }
      },
      "post": {
        "summary": "Open account",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["currency"],
                "properties": {
                  "accountNumber": {"type": "string"},
                  "currency": {"type": "string", "enum": ["CHF", "DKK", "EUR", "GBP", "SEK", "USD"]},
                  "balance": {"type": "string", "example": "100"},
                  "description": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Account opened"},
          "400": {"description": "Validation error"},
          "406": {"description": "Account could not be opened"},
          "409": {"description": "Account number already exists"}
        }
      }
    },
    "/accounts/{accountNumber}": {
      "parameters": [
        {"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}
      ],
      "put": {
        "summary": "Update account currency or status",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "currency": {"type": "string"},
                  "status": {"type": "string", "enum": ["ACTIVE", "DISABLED", "DELETED"]}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Account updated"},
          "400": {"description": "Validation error"},
          "404": {"description": "Account not found"}
        }
      },
      "delete": {
        "summary": "Close account",
        "responses": {
          "200": {"description": "Account closed"},
          "404": {"description": "Account not found"}
        }
      }
    },
    "/transfers": {
      "get": {
        "summary": "Search transfers",
        "parameters": [
          {"name": "source", "in": "query", "schema": {"type": "string"}},
          {"name": "destination", "in": "query", "schema": {"type": "string"}},
          {"name": "orderBy", "in": "query", "schema": {"type": "string", "enum": ["source", "destination", "timestamp"]}},
          {"name": "sortOrder", "in": "query", "schema": {"type": "string", "enum": ["asc", "desc"], "default": "desc"}}
        ],
        "responses": {
          "200": {"description": "Matching transfers"},
          "400": {"description": "Validation error"}
        }
      },
      "post": {
        "summary": "Create a pending transfer",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["source", "destination", "amount", "description"],
                "properties": {
                  "source": {"type": "string"},
                  "destination": {"type": "string"},
                  "amount": {"type": "string", "example": "700"},
                  "description": {"type": "string", "example": "Salary November"},
                  "executionTime": {"type": "string", "example": "2018/11/30 09:00:00"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Transfer created"},
          "400": {"description": "Validation error"},
          "404": {"description": "Account not found"},
          "406": {"description": "Transfer rejected"}
        }
      }
    },
    "/transfers/{transferId}/execute": {
      "put": {
        "summary": "Execute a pending transfer",
        "parameters": [
          {"name": "transferId", "in": "path", "required": true, "schema": {"type": "integer"}}
        ],
        "responses": {
          "200": {"description": "Transfer executed"},
          "404": {"description": "Transfer not found"},
          "406": {"description": "Transfer rejected"},
          "409": {"description": "Transfer already executed"}
        }
      }
    },
    "/rates": {
      "get": {
        "summary": "List configured rates",
        "responses": {"200": {"description": "Rates fetched"}}
      }
    },
    "/rates/{from}/{to}": {
      "get": {
        "summary": "Get a rate by currency pair",
        "parameters": [
          {"name": "from", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "to", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Rate fetched"},
          "400": {"description": "Validation error"},
          "406": {"description": "Rate not configured"}
        }
      }
    },
    "/rates/convert": {
      "get": {
        "summary": "Convert an amount",
        "parameters": [
          {"name": "amount", "in": "query", "required": true, "schema": {"type": "string"}},
          {"name": "fromCcy", "in": "query", "required": true, "schema": {"type": "string"}},
          {"name": "toCcy", "in": "query", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Amount converted"},
          "400": {"description": "Validation error"},
          "406": {"description": "Rate not configured"}
        }
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {"type": "http", "scheme": "basic"}
    }
  }
}`
