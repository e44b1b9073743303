package errors

import (
	"errors"
	"fmt"
)

// RemoteError represents a non-success response from a catalog service.
// Item- or page-scoped callers record it and continue; only setup-scoped
// callers (login, first listing page) treat it as fatal to the run.
type RemoteError struct {
	Service    string
	StatusCode int
	URL        string
}

func (e *RemoteError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s returned HTTP %d for %s", e.Service, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Service, e.StatusCode)
}

// NewRemoteError creates a RemoteError for the given service response.
func NewRemoteError(service string, statusCode int, url string) *RemoteError {
	return &RemoteError{Service: service, StatusCode: statusCode, URL: url}
}

// IsRemote reports whether err is a RemoteError (even when wrapped).
func IsRemote(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}
