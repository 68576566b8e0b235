package docstore

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the addressed folder or file does not exist.
	ErrNotFound = errors.New("docstore item not found")
	// ErrConflict indicates a folder with the requested name already exists.
	ErrConflict = errors.New("docstore item already exists")
	// ErrTransient marks failures worth a single retry (throttling, 5xx, network).
	ErrTransient = errors.New("docstore transient failure")
	// ErrInvalidLocation indicates a missing site or a path traversal segment.
	ErrInvalidLocation = errors.New("invalid docstore location")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

func statusError(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusTooManyRequests, status >= 500:
		return ErrTransient
	}
	return nil
}
