package facebook

import (
	"errors"
	"fmt"
)

// ErrInvalidProfileData is returned when user data fetched from Facebook does not
// satisfy the local profile rules. Nothing from the attempt is persisted.
var ErrInvalidProfileData = errors.New("facebook: invalid profile data")

// ProtocolError is a non-success HTTP status returned by the Graph API.
type ProtocolError struct {
	Resource   string
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("facebook: %s returned HTTP %d: %s", e.Resource, e.StatusCode, truncate(e.Body, 256))
}

// IsProtocolError reports whether err wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
