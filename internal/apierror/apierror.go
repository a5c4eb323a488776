// Package apierror holds the JSON envelopes used for every 4xx/5xx answer.
// Internal errors never reach the client; only the message chosen by the
// handler and, for server errors, the request id to correlate with logs.
package apierror

// MensajeInterno is the only text a client sees for an unexpected failure.
const MensajeInterno = "Error interno del servidor"

type APIError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Interno builds the 500 envelope tagged with the request id.
func Interno(msg, requestID string) *APIError {
	if msg == "" {
		msg = MensajeInterno
	}
	return &APIError{Detail: msg, RequestID: requestID}
}

// ValidationError lists the failing field and the rule it broke.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Datos invalidos", Fields: fields}
}
