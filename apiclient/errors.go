package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransport        = errors.New("tournament api unreachable")
	ErrNotFound         = errors.New("tournament api resource not found")
	ErrAlreadyFinalized = errors.New("match score has already been finalized")
	ErrPoolHasFixtures  = errors.New("pool has existing fixtures")
	ErrInvalidPayload   = errors.New("tournament api returned an invalid payload")
)

// APIError is a non-2xx answer carrying the API's {"error": "..."} body. The
// message is shown to operators as-is.
type APIError struct {
	Status   int
	Message  string
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tournament api %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Is lets callers test API errors against the conflict sentinels the API
// only reports through its message text.
func (e *APIError) Is(target error) bool {
	msg := strings.ToLower(e.Message)
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrAlreadyFinalized:
		return e.Status == 400 && strings.Contains(msg, "already been finalized")
	case ErrPoolHasFixtures:
		return strings.Contains(msg, "existing fixtures")
	}
	return false
}

// Message extracts the operator-facing text from an error returned by the
// client.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
