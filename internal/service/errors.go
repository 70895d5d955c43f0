// Package service implements the booking transaction logic on top of
// the repository layer. Expected business outcomes are returned as
// typed errors so handlers can map them to HTTP statuses with
// errors.Is / errors.As; anything else is an unexpected database or
// transport failure and propagates as-is after the transaction has
// been rolled back.
package service

import (
	"errors"
	"fmt"
)

// ErrDateNotAvailable means no availability row is provisioned for the
// requested date at all. Distinct from InsufficientSlotsError: this is
// a bad-request outcome, not a capacity conflict.
var ErrDateNotAvailable = errors.New("date not available for booking")

// ErrBookingNotFound means no booking row matches the requested id.
var ErrBookingNotFound = errors.New("booking not found")

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level failures from input or
// business-rule validation. It is returned before any transaction is
// opened.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("business rule validation failed (%d field errors)", len(e.Fields))
}

// InsufficientSlotsError means the availability row exists but does not
// have enough free slots for the requested party size. Carries the
// counts so clients can react programmatically. Maps to 409.
type InsufficientSlotsError struct {
	Available int
	Requested int
}

func (e *InsufficientSlotsError) Error() string {
	return fmt.Sprintf("only %d slots available, but %d requested", e.Available, e.Requested)
}
