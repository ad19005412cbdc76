package handlers

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes. Clients branch on these, so they
// never change even when the human-readable message does.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeAuthRequired    = "AUTH_REQUIRED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeTokenInvalid    = "TOKEN_INVALID"
	CodeTokenNotFound   = "TOKEN_NOT_FOUND"
	CodeExpired         = "EXPIRED"
	CodeAlreadyAccepted = "ALREADY_ACCEPTED"
	CodeInternal        = "INTERNAL"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
