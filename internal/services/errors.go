package services

import (
	"errors"
	"fmt"
)

var (
	ErrSlotUnavailable      = errors.New("slot unavailable")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

const (
	ReasonRequired       = "required"
	ReasonInvalidDate    = "invalid_date"
	ReasonInvalidTime    = "invalid_time"
	ReasonInvalidEmail   = "invalid_email"
	ReasonInvalidAmount  = "invalid_amount"
	ReasonInvalidType    = "invalid_type"
	ReasonInvalidChoice  = "invalid_choice"
	ReasonNotCompletable = "not_completable"
	ReasonInvalidRange   = "invalid_range"
)

// ValidationError is returned before any persistence call when input is rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

func invalid(field string, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
