// Package response defines the JSON envelope every endpoint answers with.
package response

// StandardResponse is the envelope of every API response. Data carries the
// payload on success and, for PARTIAL_SUCCESS, the state needed to resume.
type StandardResponse struct {
	Status    StatusEnum `json:"status"`
	ErrorCode int        `json:"errorCode"`
	Message   string     `json:"message"`
	Data      any        `json:"data"`
	Errors    []Errors   `json:"errors"`
}

type StatusEnum string

const (
	StatusSuccess        StatusEnum = "SUCCESS"
	StatusPartialSuccess StatusEnum = "PARTIAL_SUCCESS"
	StatusFailed         StatusEnum = "FAILED"
)

type Errors struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

// Success wraps data in a SUCCESS envelope
func Success(data any) StandardResponse {
	return StandardResponse{
		Status:  StatusSuccess,
		Message: "Success",
		Data:    data,
		Errors:  []Errors{},
	}
}

// Failure builds a non-success envelope. The first error supplies the
// top-level code; message falls back to that error's message.
func Failure(status StatusEnum, message string, data any, errs ...Errors) StandardResponse {
	if errs == nil {
		errs = []Errors{}
	}

	resp := StandardResponse{
		Status:  status,
		Message: message,
		Data:    data,
		Errors:  errs,
	}
	if len(errs) > 0 {
		resp.ErrorCode = errs[0].ErrorCode
		if resp.Message == "" {
			resp.Message = errs[0].Message
		}
	}
	return resp
}

// Error is a single entry of the errors list
func Error(code int, message string) Errors {
	return Errors{ErrorCode: code, Message: message}
}
