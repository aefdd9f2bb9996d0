// Package response provides a consistent JSON envelope for all API
// endpoints.
package response

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the envelope's error.code field.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeMemberNotFound     = "MEMBER_NOT_FOUND"
	CodeAmbiguousMember    = "AMBIGUOUS_MEMBER"
	CodeNoMembers          = "NO_MEMBERS"
	CodeInvalidPercentage  = "INVALID_PERCENTAGE_SUM"
	CodeAmountMismatch     = "AMOUNT_MISMATCH"
	CodeUnsupportedSplit   = "UNSUPPORTED_DEFAULT_SPLIT"
	CodeNoItems            = "NO_ITEMS"
	CodePersistenceFailed  = "PERSISTENCE_FAILED"
	CodeNotificationFailed = "NOTIFICATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// APIResponse is the envelope wrapping every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination info for list responses
type Meta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

func write(w http.ResponseWriter, status int, body *APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON writes a successful response with the given data
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, &APIResponse{Success: true, Data: data})
}

// JSONWithMeta writes a successful response with data and pagination meta
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	write(w, status, &APIResponse{Success: true, Data: data, Meta: meta})
}

// Error writes a failed response with an explicit code
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, &APIResponse{Success: false, Error: &APIError{Code: code, Message: message}})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, CodeConflict, message)
}

// UnprocessableEntity reports a domain validation failure with a
// specific error code.
func UnprocessableEntity(w http.ResponseWriter, code, message string) {
	Error(w, http.StatusUnprocessableEntity, code, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, CodeInternalError, message)
}
