package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard application error shape for the HTTP layer.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, for logs, never exposed
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// FromError converts any error into an AppError, defaulting to a generic 500
// that keeps the original cause for logging.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail returns a copy with extra detail; base errors stay immutable.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause returns a copy carrying the original error.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request contains invalid syntax or missing parameters.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Required fields are missing from the request.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "A path or query parameter is invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "The requested resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrOrganizationNotFound = &AppError{
		Code:       "ORGANIZATION_NOT_FOUND",
		Message:    "The specified organization does not exist.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrSchemeNotFound = &AppError{
		Code:       "SCHEME_NOT_FOUND",
		Message:    "The specified scheme does not exist.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "The specified user does not exist.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrDeviceNotFound = &AppError{
		Code:       "DEVICE_NOT_FOUND",
		Message:    "The specified device does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAlreadyExists = &AppError{
		Code:       "ALREADY_EXISTS",
		Message:    "The resource already exists.",
		HTTPStatus: http.StatusConflict,
	}
	ErrSchemeCodeTaken = &AppError{
		Code:       "SCHEME_CODE_TAKEN",
		Message:    "The scheme code is already in use.",
		HTTPStatus: http.StatusConflict,
	}
	ErrMobileTaken = &AppError{
		Code:       "MOBILE_TAKEN",
		Message:    "The mobile number is already registered.",
		HTTPStatus: http.StatusConflict,
	}
	ErrEmailTaken = &AppError{
		Code:       "EMAIL_TAKEN",
		Message:    "The email is already registered in this organization.",
		HTTPStatus: http.StatusConflict,
	}
	ErrFingerprintTaken = &AppError{
		Code:       "FINGERPRINT_TAKEN",
		Message:    "The device fingerprint is already registered.",
		HTTPStatus: http.StatusConflict,
	}
	ErrOrganizationInUse = &AppError{
		Code:       "ORGANIZATION_IN_USE",
		Message:    "The organization still owns schemes or users and cannot be deleted.",
		HTTPStatus: http.StatusConflict,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "One or more fields failed validation.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrInternal = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "An internal server error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "The data store is not reachable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
