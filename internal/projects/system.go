package projects

import (
	"context"

	"github.com/google/uuid"
)

// System is the tracking store contract.
type System interface {
	Handler() *Handler

	// Find loads a project by record id (UUID) or job number.
	Find(ctx context.Context, key string) (*Project, error)
	// Update applies cmd to project id and returns the stored result.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Project, error)
}
