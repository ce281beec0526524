// Package services defines the business logic for payments and accounts.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Payment-related errors.
var (
	// ErrInvalidAmount is returned when an intent is requested with a
	// missing or non-positive amount.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrGateway is returned when the upstream payment processor call
	// fails. No local state has been written in that case.
	ErrGateway = errors.New("payment gateway request failed")

	// ErrPersistPayment is returned when the local payment record could not
	// be written. When this follows a successful upstream call the intent
	// exists upstream without a matching local record.
	ErrPersistPayment = errors.New("failed to persist payment record")

	// ErrBadSignature is returned when a webhook payload fails signature
	// verification. No state change is performed.
	ErrBadSignature = errors.New("invalid webhook signature")
)

// Account-related errors.
var (
	// ErrMissingFields is returned when a registration or login request
	// omits a required field.
	ErrMissingFields = errors.New("all fields are required")

	// ErrInvalidRole is returned when registration names a role outside the
	// allowed set (participant, organizer, judge).
	ErrInvalidRole = errors.New("role must be participant, organizer, or judge")

	// ErrEmailTaken is returned when the registration email is already in use.
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
