package dto

// ErrorResponse is the stable JSON error shape returned by every failing
// endpoint. Message is always present; the remaining fields carry
// structured detail where applicable.
type ErrorResponse struct {
	Message    string   `json:"message"`
	Field      string   `json:"field,omitempty"`
	Required   []string `json:"required,omitempty"`
	ValidRoles []string `json:"validRoles,omitempty"`
}

// NewError creates an error response with a message
func NewError(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

// WithField names the offending field (e.g. the colliding unique column)
func (e *ErrorResponse) WithField(field string) *ErrorResponse {
	e.Field = field
	return e
}

// WithRequired lists the required request fields
func (e *ErrorResponse) WithRequired(fields ...string) *ErrorResponse {
	e.Required = fields
	return e
}

// WithValidRoles lists the accepted role values
func (e *ErrorResponse) WithValidRoles(roles []string) *ErrorResponse {
	e.ValidRoles = roles
	return e
}
