package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error into one of the domain outcomes
// the rest of the system is allowed to match on.
type Kind string

const (
	// KindServiceNotFound indicates the requested service is missing or inactive
	KindServiceNotFound Kind = "SERVICE_NOT_FOUND"

	// KindSlotUnavailable indicates the requested slot cannot be booked
	KindSlotUnavailable Kind = "SLOT_UNAVAILABLE"

	// KindBookingNotFound indicates no booking matches the given identifiers
	KindBookingNotFound Kind = "BOOKING_NOT_FOUND"

	// KindBookingAlreadyCancelled indicates the booking is in its terminal state
	KindBookingAlreadyCancelled Kind = "BOOKING_ALREADY_CANCELLED"

	// KindInvalidBookingData indicates malformed or missing request data
	KindInvalidBookingData Kind = "INVALID_BOOKING_DATA"

	// KindInternal indicates an unexpected infrastructure failure
	KindInternal Kind = "INTERNAL_ERROR"
)

// AppError is the single error type the application layers return.
// Callers branch on Kind, never on a concrete subtype.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsDomain reports whether the error is an expected business outcome,
// as opposed to an infrastructure failure that needs alerting.
func (e *AppError) IsDomain() bool {
	return e.Kind != KindInternal
}

// KindOf extracts the Kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// NewServiceNotFoundError creates a service-not-found error
func NewServiceNotFoundError(message string) *AppError {
	return &AppError{Kind: KindServiceNotFound, Message: message}
}

// NewSlotUnavailableError creates a slot-unavailable error
func NewSlotUnavailableError(message string) *AppError {
	return &AppError{Kind: KindSlotUnavailable, Message: message}
}

// NewBookingNotFoundError creates a booking-not-found error
func NewBookingNotFoundError(message string) *AppError {
	return &AppError{Kind: KindBookingNotFound, Message: message}
}

// NewBookingAlreadyCancelledError creates an already-cancelled error
func NewBookingAlreadyCancelledError(message string) *AppError {
	return &AppError{Kind: KindBookingAlreadyCancelled, Message: message}
}

// NewInvalidBookingDataError creates a validation error
func NewInvalidBookingDataError(message string) *AppError {
	return &AppError{Kind: KindInvalidBookingData, Message: message}
}

// NewInternalError creates an internal error wrapping an underlying cause
func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}
