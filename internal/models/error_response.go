package models

// Machine-readable error codes surfaced to API clients.
const (
	CodeListingNotFound    = "LISTING_NOT_FOUND"
	CodePaymentNotVerified = "PAYMENT_NOT_VERIFIED"
	CodeAlreadyAtLevel     = "ALREADY_AT_LEVEL"
	CodeDeadlinePassed     = "DEADLINE_PASSED"
	CodeBelowMinimum       = "BELOW_MINIMUM"
	CodeSlotClosed         = "SLOT_CLOSED"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeStaleStatus        = "STALE_STATUS"
)

// ErrorResponse describes an API error with an HTTP status, a stable
// machine code and a human-readable message.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"reason"`

	// Populated only for rejected status transitions.
	Attempted   string   `json:"attempted,omitempty"`
	AllowedNext []string `json:"allowedNext,omitempty"`
}

// NewErrorResponse creates a new error with a status code and message.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// NewCodedError creates a new error carrying a machine code.
func NewCodedError(statusCode int, code, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Code:       code,
		Message:    message}
}

// NewTransitionError creates an INVALID_TRANSITION error listing the
// attempted status and the statuses that would have been accepted.
func NewTransitionError(statusCode int, message, attempted string, allowedNext []string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode:  statusCode,
		Code:        CodeInvalidTransition,
		Message:     message,
		Attempted:   attempted,
		AllowedNext: allowedNext}
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return e.Message
}
