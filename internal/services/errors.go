package services

import "errors"

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrForbidden          = errors.New("requester does not own this item")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrNotApproved        = errors.New("post is not approved")
	ErrStillActive        = errors.New("post has not expired yet")
	ErrRepostLimit        = errors.New("repost limit reached")
	ErrPaymentUnavailable = errors.New("payment unavailable")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrIntentNotFound     = errors.New("checkout session not found")
)

// ValidationError is a caller-facing input problem. Its message is returned
// verbatim to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
