// Package projects is the tracking store for job records. The round counter
// is the only state shared across concurrent filings, so every write is a
// versioned compare-and-swap.
package projects

import (
	"time"

	"github.com/google/uuid"

	"github.com/MGhunch/dot-file/internal/classification"
)

// Project is the tracking record for one job.
type Project struct {
	ID              uuid.UUID               `json:"id"`
	JobNumber       string                  `json:"job_number"`
	ClientCode      string                  `json:"client_code"`
	Round           int                     `json:"round"`
	LastFiledTo     classification.Category `json:"last_filed_to,omitempty"`
	LatestFolderURL string                  `json:"latest_folder_url,omitempty"`
	Version         int                     `json:"version"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// UpdateCommand carries the fields to change. Nil fields are left untouched.
// When ExpectedVersion is set the update only applies if the stored version
// still matches; otherwise it fails with ErrVersionConflict.
type UpdateCommand struct {
	ExpectedVersion *int
	Round           *int
	LastFiledTo     *classification.Category
	LatestFolderURL *string
}
