// Package response writes the JSON envelope shared by every API endpoint.
//
// Success responses carry {"success":true,"data":...}; failures carry
// {"success":false,"error":"..."} plus an optional per-item problem list
// (the `problemas` key the storefront renders for stock issues).
package response

import (
	"encoding/json"
	"net/http"

	"github.com/allinbuy/api/pkg/database"
)

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Data       interface{}          `json:"data,omitempty"`
	Error      string               `json:"error,omitempty"`
	Problems   []string             `json:"problemas,omitempty"`
	Errors     map[string]string    `json:"errors,omitempty"`
	Pagination *database.Pagination `json:"pagination,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Message sends a 200 JSON response with only a message.
func Message(w http.ResponseWriter, msg string) {
	write(w, http.StatusOK, envelope{Success: true, Message: msg})
}

// Created sends a 201 JSON response with data and an optional message.
func Created(w http.ResponseWriter, msg string, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Message: msg, Data: data})
}

// Paginated sends a 200 response with data and pagination metadata.
func Paginated(w http.ResponseWriter, data interface{}, p database.Pagination) {
	write(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Error: message})
}

// Problems sends a 400 with the per-item problem list used by checkout and
// cart validation.
func Problems(w http.ResponseWriter, message string, problems []string) {
	write(w, http.StatusBadRequest, envelope{Success: false, Error: message, Problems: problems})
}

// ValidationError sends a 422 with field-level error messages.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Success: false,
		Error:   "Error de validación",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "No autorizado")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Acceso denegado")
}

// NotFound sends a 404 with a custom message.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}
