package services

import (
	"errors"
	"fmt"

	"digilib-backend-go/internal/store"
)

// Failure codes surfaced to the transport layer alongside the HTTP status.
const (
	CodeValidation         = "VALIDATION"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyBorrowed    = "ALREADY_BORROWED"
	CodeDuplicateRequest   = "DUPLICATE_REQUEST"
	CodeFileNotFound       = "FILE_NOT_FOUND"
	CodeStorage            = "STORAGE"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrValidation(msg string) error {
	return ServiceError{Status: 400, Code: CodeValidation, Message: msg}
}

func ErrDuplicateEmail() error {
	return ServiceError{Status: 409, Code: CodeDuplicateEmail, Message: "Email already registered"}
}

func ErrInvalidCredentials() error {
	return ServiceError{Status: 401, Code: CodeInvalidCredentials, Message: "Invalid email or password"}
}

func ErrNotAuthenticated() error {
	return ServiceError{Status: 401, Code: CodeNotAuthenticated, Message: "Authentication required"}
}

func ErrForbidden(msg string) error {
	return ServiceError{Status: 403, Code: CodeForbidden, Message: msg}
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: 404, Code: CodeNotFound, Message: msg}
}

func ErrAlreadyBorrowed(msg string) error {
	return ServiceError{Status: 409, Code: CodeAlreadyBorrowed, Message: msg}
}

func ErrDuplicateRequest() error {
	return ServiceError{Status: 409, Code: CodeDuplicateRequest, Message: "You have already requested to borrow this book"}
}

func ErrFileNotFound(msg string) error {
	return ServiceError{Status: 404, Code: CodeFileNotFound, Message: msg}
}

// ErrStorage hides the underlying I/O failure behind a generic message; the
// original error stays wrapped for logging at the boundary.
func ErrStorage(err error) error {
	return storageError{cause: err}
}

type storageError struct {
	cause error
}

func (e storageError) Error() string { return fmt.Sprintf("storage failure: %v", e.cause) }
func (e storageError) Unwrap() error { return e.cause }
func (e storageError) ServiceError() ServiceError {
	return ServiceError{Status: 500, Code: CodeStorage, Message: "Storage failure"}
}

// AsServiceError maps any service-level error to the structured form handed
// to the transport layer.
func AsServiceError(err error) (ServiceError, bool) {
	var svcErr ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	var stErr storageError
	if errors.As(err, &stErr) {
		return stErr.ServiceError(), true
	}
	return ServiceError{}, false
}

// wrapStore maps store sentinels that have a single meaning everywhere;
// callers translate the context-dependent ones themselves.
func wrapStore(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound(notFoundMsg)
	case errors.Is(err, store.ErrDuplicateEmail):
		return ErrDuplicateEmail()
	default:
		return ErrStorage(err)
	}
}
