package dto

// ErrorResponse is the envelope for every rejected request. Errors carries
// field-keyed messages for validation failures and is omitted otherwise.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewError(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}

func NewValidationError(msg string, fields map[string]string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg, Errors: fields}
}
