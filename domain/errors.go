package domain

import "errors"

var (
	// ErrInvalidInput marks calculator misuse: non-positive principal or
	// tenure, or a negative rate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero is returned when a DTI is requested without a known
	// salary. Callers must not default an unknown salary to zero.
	ErrDivisionByZero = errors.New("division by zero: monthly salary unknown")

	// ErrProfileIntegrity marks a profile that cannot be underwritten, such
	// as one without a credit score.
	ErrProfileIntegrity = errors.New("profile integrity violation")

	ErrProfileNotFound     = errors.New("profile not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrDisclosureViolation = errors.New("payload not permitted at gate")
)
