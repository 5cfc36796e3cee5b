package models

import (
	"errors"
	"fmt"
)

// Common error types
var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("operation conflicts with current state")
	ErrAlreadyRegistered = errors.New("customer already registered")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrValidation        = errors.New("invalid input")
)

// Error codes carried by AppError
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrInvalidInput creates a validation error
func ErrInvalidInput(message string) error {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Err:     ErrValidation,
	}
}

// ErrInvalidFormatWithMsg creates a phone number format error
func ErrInvalidFormatWithMsg(message string) error {
	return &AppError{
		Code:    CodeInvalidFormat,
		Message: message,
		Err:     ErrInvalidFormat,
	}
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Err:     ErrNotFound,
	}
}

// ErrConflictWithMsg creates a conflict error with custom message
func ErrConflictWithMsg(message string) error {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Err:     ErrConflict,
	}
}

// ErrAlreadyRegisteredWithMsg creates a self-duplicate registration error
func ErrAlreadyRegisteredWithMsg(message string) error {
	return &AppError{
		Code:    CodeAlreadyRegistered,
		Message: message,
		Err:     ErrAlreadyRegistered,
	}
}

// ErrPhoneNumberTaken is the conflict raised when another record owns the number
func ErrPhoneNumberTaken(phoneNumber string) error {
	return ErrConflictWithMsg(fmt.Sprintf("Phone Number %s taken", phoneNumber))
}
