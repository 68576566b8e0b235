package projects

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrDuplicate       = errors.New("project already exists")
	ErrVersionConflict = errors.New("project was modified concurrently")
)

// MapHTTPStatus maps project errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
