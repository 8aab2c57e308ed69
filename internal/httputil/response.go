package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// APIResponse is the envelope used by the registration flow endpoints,
// mirroring what the sign-up client expects: a success flag plus a
// user-facing message.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess sends a success envelope.
func RespondSuccess(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, APIResponse{Success: true, Message: message}, statusCode)
}

// RespondSuccessWithData sends a success envelope carrying a payload.
func RespondSuccessWithData(w http.ResponseWriter, message string, data any, statusCode int) {
	RespondJSON(w, APIResponse{Success: true, Message: message, Data: data}, statusCode)
}

// RespondFailure sends a failure envelope.
func RespondFailure(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, APIResponse{Success: false, Message: message}, statusCode)
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}
