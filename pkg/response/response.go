// Package response writes the storefront's JSON envelopes.
//
// Every endpoint answers with an explicit success flag so clients never have
// to infer the outcome from the HTTP status alone:
//
//	{"success": true,  "orders": [...]}
//	{"success": false, "message": "Not enough stock for Obsidian Wyrm (Runed)."}
package response

import (
	"encoding/json"
	"net/http"
)

// M is the payload map merged into the envelope.
type M map[string]interface{}

func write(w http.ResponseWriter, status int, body M) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 success envelope with extra payload fields merged in.
func OK(w http.ResponseWriter, data M) {
	body := M{"success": true}
	for k, v := range data {
		body[k] = v
	}
	write(w, http.StatusOK, body)
}

// Message sends a 200 success envelope carrying only a message.
func Message(w http.ResponseWriter, message string) {
	OK(w, M{"message": message})
}

// Fail sends a 200 envelope with success=false and a human-readable message.
// The admin and shop frontends key off the flag, not the status code.
func Fail(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, M{"success": false, "message": message})
}

// Error sends an envelope with success=false and a non-2xx status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, M{"success": false, "message": message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, M{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
