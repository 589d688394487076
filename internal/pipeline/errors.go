package pipeline

import "errors"

// ContentError marks a request rejected before the pipeline ran: the
// message itself was unusable. The HTTP layer maps it to a 400.
type ContentError struct {
	Reason string
}

func (e *ContentError) Error() string { return e.Reason }

// IsContentError reports whether err is a request-validation failure.
func IsContentError(err error) bool {
	var ce *ContentError
	return errors.As(err, &ce)
}
