package errors

import "errors"

// Domain failure classes. Handlers match these with errors.Is and map them
// to HTTP statuses; everything else is wrapped around one of them.
var (
	ErrValidationFailed = errors.New("validation failed")

	// ErrContentBlocked is returned when proposal text contains contact
	// information or other off-platform solicitation.
	ErrContentBlocked = errors.New("proposal text contains contact information")

	// ErrNotFoundOrAccessDenied merges "request does not exist" and "caller
	// is not a participant" so that existence is never leaked.
	ErrNotFoundOrAccessDenied = errors.New("request not found or access denied")

	ErrProposalNotFound = errors.New("proposal not found")

	// ErrInvalidState is wrapped with the current status so the caller can
	// react appropriately.
	ErrInvalidState = errors.New("operation not valid for current request status")

	// ErrTransactionAborted marks a failed conversion commit. Retryable; no
	// partial state is left behind.
	ErrTransactionAborted = errors.New("conversion transaction aborted")

	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

type HttpError struct {
	Reason string `json:"reason"`
}

func NewHttpError(reason string) HttpError {
	return HttpError{Reason: reason}
}
