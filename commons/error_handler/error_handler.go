package error_handler

import (
	"net/http"

	"karmahub/commons/response"
)

type ErrorCollection struct {
	errors []response.Errors
	status response.StatusEnum
}

func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{
		errors: make([]response.Errors, 0),
		status: response.StatusFailed,
	}
}

func (ec *ErrorCollection) AddError(code int, message string, data any) *ErrorCollection {
	ec.errors = append(ec.errors, response.Errors{
		ErrorCode: code,
		Message:   message,
		Data:      data,
	})
	return ec
}

// MarkPartial flags a request whose effects were only partly applied
func (ec *ErrorCollection) MarkPartial() *ErrorCollection {
	ec.status = response.StatusPartialSuccess
	return ec
}

func (ec *ErrorCollection) Status() response.StatusEnum {
	return ec.status
}

func (ec *ErrorCollection) HasErrors() bool {
	return len(ec.errors) > 0
}

func (ec *ErrorCollection) GetErrors() []response.Errors {
	return ec.errors
}

// GetHTTPStatus answers with the first error's code when it is an HTTP
// error status
func (ec *ErrorCollection) GetHTTPStatus() int {
	if !ec.HasErrors() {
		return http.StatusOK
	}

	code := ec.errors[0].ErrorCode
	switch {
	case code >= 400 && code < 600:
		return code
	case code >= 600:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Common error codes
const (
	CodeValidationError     = 400
	CodeUnauthorized        = 401
	CodeForbidden           = 403
	CodeNotFound            = 404
	CodeConflict            = 409
	CodeInternalServerError = 500
	CodeServiceUnavailable  = 503
)

// Helper functions for common errors
func GetValidationError(message string) response.Errors {
	return response.Errors{
		ErrorCode: CodeValidationError,
		Message:   message,
		Data:      nil,
	}
}

func GetNotFoundError(message string) response.Errors {
	return response.Errors{
		ErrorCode: CodeNotFound,
		Message:   message,
		Data:      nil,
	}
}

func GetInternalServerError(message string) response.Errors {
	return response.Errors{
		ErrorCode: CodeInternalServerError,
		Message:   message,
		Data:      nil,
	}
}
