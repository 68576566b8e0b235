// Package filing sequences a filing request through client lookup, job
// folder lookup, classification, folder resolution, file moves, the email
// artifact and the tracking update. Each stage has its own failure policy;
// the caller always receives a structured Result.
package filing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MGhunch/dot-file/internal/activity"
	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/clients"
	"github.com/MGhunch/dot-file/internal/projects"
)

// State is a terminal filing state.
type State string

const (
	StateFiled          State = "filed"
	StateClassifiedOnly State = "classified_only"
	StateFailed         State = "failed"
)

// Result is the response to a filing request. It is built once and not
// modified after File returns.
type Result struct {
	Success        bool                   `json:"success"`
	Filed          bool                   `json:"filed"`
	JobNumber      string                 `json:"jobNumber"`
	Destination    string                 `json:"destination,omitempty"`
	DestPath       string                 `json:"destPath,omitempty"`
	FilesMoved     []string               `json:"filesMoved,omitempty"`
	RoundNumber    *int                   `json:"roundNumber"`
	Classification *classification.Result `json:"classification,omitempty"`
	FolderURL      string                 `json:"folderUrl,omitempty"`
	State          State                  `json:"state"`
	Error          string                 `json:"error,omitempty"`
	ErrorKind      string                 `json:"errorKind,omitempty"`

	cause error
}

// Settings tunes the orchestrator.
type Settings struct {
	IncomingSite    string
	IncomingPath    string
	DocumentRoot    string
	Location        *time.Location
	LookupTimeout   time.Duration
	DocstoreTimeout time.Duration
	TrackingTimeout time.Duration
}

// ClientDirectory resolves client codes to document store sites.
type ClientDirectory interface {
	Find(ctx context.Context, code string) (*clients.Client, error)
}

// Tracker reads and conditionally updates project records.
type Tracker interface {
	Find(ctx context.Context, key string) (*projects.Project, error)
	Update(ctx context.Context, id uuid.UUID, cmd projects.UpdateCommand) (*projects.Project, error)
}

// Classifier decides a destination category for a message.
type Classifier interface {
	Classify(ctx context.Context, m classification.Message) (classification.Result, classification.Signals)
}

// ActivityLog records filing outcomes.
type ActivityLog interface {
	Record(ctx context.Context, e activity.Entry) error
}

// System files inbound email attachments.
type System interface {
	Handler() *Handler

	// File runs every stage for req. The error is non-nil only when req is
	// rejected before any stage runs; all other outcomes are reported on Result.
	File(ctx context.Context, req Request) (*Result, error)
}
