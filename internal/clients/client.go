// Package clients is the client directory: it maps a client code onto the
// document store site and folder that hold that client's jobs.
package clients

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Client maps a code to its document store location.
type Client struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	SiteID       string    `json:"site_id"`
	DocumentRoot string    `json:"document_root"`
	CreatedAt    time.Time `json:"created_at"`
}

// ErrNotFound indicates no client is registered under the code.
var ErrNotFound = errors.New("client not found")

var errDuplicate = errors.New("client already exists")

// MapHTTPStatus maps client errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// System is the client directory contract.
type System interface {
	Handler() *Handler

	// Find looks up a client by code, ignoring case.
	Find(ctx context.Context, code string) (*Client, error)
	// List returns every client ordered by code.
	List(ctx context.Context) ([]Client, error)
}
