package careers

import (
	"errors"
	"fmt"
)

// ErrMalformedBoard is wrapped by errors returned for board payloads that lack
// the expected structure.
var ErrMalformedBoard = errors.New("malformed board payload")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedBoard, fmt.Sprintf(format, args...))
}
