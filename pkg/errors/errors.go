package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode int

const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrCapacityExceeded
	ErrSlotConflict
	ErrInvalidAction
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// AppError represents an application error. SuggestedSlot is populated only
// for slot conflicts so callers can retry with the next free time.
type AppError struct {
	Code          ErrorCode `json:"code"`
	Message       string    `json:"message"`
	SuggestedSlot string    `json:"suggested_slot,omitempty"`
	Err           error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error class to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrCapacityExceeded, ErrInvalidAction:
		return http.StatusBadRequest
	case ErrSlotConflict:
		return http.StatusConflict
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError unwraps err into an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

// CapacityExceeded is returned when a doctor's daily booking cap is reached.
func CapacityExceeded(message string) *AppError {
	return &AppError{
		Code:    ErrCapacityExceeded,
		Message: message,
	}
}

// SlotConflict is returned when a requested slot overlaps an existing booking.
// The suggested slot is embedded in the message so clients can retry at once.
func SlotConflict(suggested string) *AppError {
	return &AppError{
		Code:          ErrSlotConflict,
		Message:       fmt.Sprintf("doctor is busy at this time, next available slot is %s", suggested),
		SuggestedSlot: suggested,
	}
}

// SlotConflictNoneLeft covers the case where the walk forward from the
// requested time runs past midnight: the day has no remaining slot.
func SlotConflictNoneLeft() *AppError {
	return &AppError{
		Code:    ErrSlotConflict,
		Message: "doctor is busy at this time and has no later slot free today, please choose another date",
	}
}

func InvalidAction(action string) *AppError {
	return &AppError{
		Code:    ErrInvalidAction,
		Message: fmt.Sprintf("invalid action: %s", action),
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
