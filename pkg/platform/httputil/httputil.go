package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"enrolld/pkg/domainerrors"
)

// errorBody is the wire shape for every error response.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error to its HTTP status and body. Internal
// errors omit the description so infrastructure detail never reaches
// callers; everything else includes the message.
func WriteError(w http.ResponseWriter, err error) {
	var derr domainerrors.Error
	if !errors.As(err, &derr) {
		derr = domainerrors.New(domainerrors.CodeInternal, "internal error")
	}

	body := errorBody{Error: string(derr.Code)}
	if derr.Code != domainerrors.CodeInternal {
		body.ErrorDescription = derr.Message
	}

	WriteJSON(w, domainerrors.ToHTTPStatus(derr.Code), body)
}

// DecodeJSON parses the request body into T, translating malformed payloads
// into the missing_field taxonomy code.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, domainerrors.New(domainerrors.CodeMissingField, "invalid JSON body")
	}
	return v, nil
}
