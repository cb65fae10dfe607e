package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Ledger error codes
const (
	ErrCodeNotFound                = "ERR_NOT_FOUND"
	ErrCodeInvalidState            = "ERR_INVALID_STATE"
	ErrCodeAlreadyConfirmed        = "ERR_ALREADY_CONFIRMED"
	ErrCodeConcurrencyConflict     = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInsufficientStock       = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInsufficientGlobalStock = "ERR_INSUFFICIENT_GLOBAL_STOCK"
	ErrCodeInvalidPrice            = "ERR_INVALID_PRICE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	// State conflicts -> 409, the caller may refresh and retry
	ErrCodeInvalidState:        http.StatusConflict,
	ErrCodeAlreadyConfirmed:    http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Stock and pricing rules -> 422 Unprocessable Entity
	ErrCodeInsufficientStock:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientGlobalStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidPrice:            http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"INSUFFICIENT_STOCK":        ErrCodeInsufficientStock,
	"INSUFFICIENT_GLOBAL_STOCK": ErrCodeInsufficientGlobalStock,
	"INVALID_PRICE":             ErrCodeInvalidPrice,
	"FORBIDDEN":                 ErrCodeForbidden,
	"UNAUTHORIZED":              ErrCodeUnauthorized,
	"ALREADY_CONFIRMED":         ErrCodeAlreadyConfirmed,
	"CONCURRENCY_CONFLICT":      ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
