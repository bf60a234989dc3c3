package dto

import "net/http"

// Error codes returned by the API
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeInvalidState = "INVALID_STATE"
)

// Response is the envelope for all API responses
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable code and a human-readable message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewErrorResponse wraps an error code and message in an error envelope
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: &ErrorBody{Code: code, Message: message}}
}

// GetHTTPStatus maps a domain error code to an HTTP status code
func GetHTTPStatus(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "INVALID_INPUT", "BAD_REQUEST", "INVALID_QUANTITY", "INVALID_COST",
		"INVALID_ACTOR", "INVALID_REASON", "INVALID_REFERENCE", "NO_ITEMS",
		"INVALID_BRANCH", "INVALID_PRODUCT", "INVALID_EXCHANGE_RATE":
		return http.StatusBadRequest
	case "ALREADY_EXISTS", "DUPLICATE_PRODUCT", "CONCURRENCY_CONFLICT", "LOCK_TIMEOUT":
		return http.StatusConflict
	case "INVALID_STATE", "INSUFFICIENT_STOCK", "OVER_RECEIPT", "MISMATCHED_REFERENCE":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
