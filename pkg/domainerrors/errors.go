package domainerrors

import "net/http"

// Code tags an error with its place in the enrollment error taxonomy so
// transports can map it without string matching.
type Code string

const (
	// CodeMissingField: caller omitted or malformed a required input.
	// Surfaced synchronously, nothing persisted.
	CodeMissingField Code = "missing_field"
	// CodeInvalidCPF: CPF checksum failure. Surfaced synchronously,
	// nothing persisted.
	CodeInvalidCPF Code = "invalid_cpf"
	// CodeOverlap: a new age group intersects an existing range.
	CodeOverlap Code = "age_range_overlap"
	// CodeNotFound: the referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeInternal: infrastructure fault.
	CodeInternal Code = "internal_error"
)

// Error carries a taxonomy code alongside a human-readable message. Services
// return it; the HTTP layer translates it with ToHTTPStatus.
type Error struct {
	Code    Code
	Message string
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

// ToHTTPStatus maps taxonomy codes to HTTP status codes. Unknown codes fall
// back to 500 so a missing mapping never leaks a 200.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeMissingField:
		return http.StatusBadRequest
	case CodeInvalidCPF:
		return http.StatusUnprocessableEntity
	case CodeOverlap:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
