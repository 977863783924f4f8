package dto

import (
	"net/http"
	"strings"
)

// Error codes follow ERR_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeBodyTooLarge is returned when the body exceeds http.max_body_size
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"
)

// Tenancy and authentication error codes
const (
	ErrCodeTenantMissing   = "ERR_TENANT_MISSING"
	ErrCodeUnauthenticated = "ERR_UNAUTHENTICATED"
	ErrCodeTenantMismatch  = "ERR_TENANT_MISMATCH"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeTokenInvalid    = "ERR_TOKEN_INVALID"
	ErrCodeTenantSuspended = "ERR_TENANT_SUSPENDED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
	ErrCodeBusinessRule  = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	// A missing tenant is a malformed request; an unknown or foreign user is
	// refused.
	ErrCodeTenantMissing:   http.StatusBadRequest,
	ErrCodeUnauthenticated: http.StatusForbidden,
	ErrCodeTenantMismatch:  http.StatusForbidden,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeTenantSuspended: http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:  http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes derived from
// a domain INVALID_* code are input errors, other unlisted ERR_ codes are
// business rule violations and anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "ERR_INVALID_"), strings.HasPrefix(code, "ERR_RESERVED_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ERR_"):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes that have a dedicated API
// code
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"TENANT_NOT_FOUND": ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"INVALID_TOKEN":    ErrCodeTokenInvalid,
	"TENANT_MISSING":   ErrCodeTenantMissing,
	"UNAUTHENTICATED":  ErrCodeUnauthenticated,
	"TENANT_MISMATCH":  ErrCodeTenantMismatch,
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API form. Codes
// already carrying the ERR_ prefix are returned as-is, other domain codes
// get the prefix (INVALID_CIN becomes ERR_INVALID_CIN).
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
