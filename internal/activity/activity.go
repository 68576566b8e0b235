// Package activity keeps an append-only log of filing outcomes.
package activity

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/MGhunch/dot-file/pkg/pagination"
)

// Entry is one filing outcome.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	JobNumber   string    `json:"job_number"`
	ClientCode  string    `json:"client_code"`
	State       string    `json:"state"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Path        string    `json:"path"`
	Files       []string  `json:"files"`
	FiledAt     time.Time `json:"filed_at"`
}

// Filters narrows a listing. Empty fields are ignored.
type Filters struct {
	JobNumber string `json:"job_number,omitempty"`
	State     string `json:"state,omitempty"`
}

// FiltersFromQuery reads job_number and state.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{
		JobNumber: values.Get("job_number"),
		State:     values.Get("state"),
	}
}

// System records and lists filing activity.
type System interface {
	Handler() *Handler

	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error)
}
