// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, unauthorized) mirror common HTTP status
//     semantics to aid interoperability.
//   - Domain-specific codes (e.g., invalid_amount, signature_invalid) are reserved
//     for business logic errors that cannot be conveyed by status alone.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidAmount    = "invalid_amount"
	ErrCodeSignatureInvalid = "signature_invalid"
	ErrCodeGatewayError     = "gateway_error"
	ErrCodeEmailExists      = "email_exists"
	ErrCodeInvalidRole      = "invalid_role"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
