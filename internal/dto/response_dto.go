package dto

// ErrorResponse is the structured error body every handler returns:
// a machine-readable kind plus a human-readable message, never stack
// traces or internal identifiers.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
