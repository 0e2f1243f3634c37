// Package types holds the JSON envelopes every API response uses.
package types

// SuccessEnvelope wraps every successful payload under a "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Success wraps data in the standard envelope.
func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// APIError is the wire shape of a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Failure builds an error envelope from code and message.
func Failure(code, message string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message}}
}
