package folders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/pkg/docstore"
)

// Resolver finds or creates destination folders beneath a job folder.
type Resolver struct {
	store   docstore.System
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver bounds each document store call by timeout.
func NewResolver(store docstore.System, timeout time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:   store,
		timeout: timeout,
		logger:  logger.With("system", "folders"),
	}
}

// Resolve returns the destination for r beneath job, creating it if absent.
// A transient store failure is retried once. Resolving the same category
// and round again reuses the folder and never creates a duplicate.
func (r *Resolver) Resolve(ctx context.Context, job docstore.Location, result classification.Result) (Destination, error) {
	name, err := FolderName(result)
	if err != nil {
		return Destination{}, err
	}

	dest, err := r.findOrCreate(ctx, job, name)
	if docstore.IsTransient(err) {
		r.logger.WarnContext(ctx, "transient failure resolving folder, retrying", "folder", name, "error", err)
		dest, err = r.findOrCreate(ctx, job, name)
	}
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %s: %w", ErrFolderResolution, name, err)
	}

	r.logger.InfoContext(ctx, "folder resolved", "folder", name, "path", dest.Path(), "existed", dest.Existed)
	return dest, nil
}

func (r *Resolver) findOrCreate(ctx context.Context, job docstore.Location, name string) (Destination, error) {
	if dest, ok, err := r.find(ctx, job, name); err != nil || ok {
		return dest, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	item, err := r.store.CreateFolder(callCtx, job, name)
	cancel()

	if errors.Is(err, docstore.ErrConflict) {
		dest, ok, err := r.find(ctx, job, name)
		if err != nil {
			return Destination{}, err
		}
		if !ok {
			return Destination{}, fmt.Errorf("%s reported existing but not listed", name)
		}
		return dest, nil
	}
	if err != nil {
		return Destination{}, err
	}

	return Destination{
		FolderName: item.Name,
		Location:   item.Location,
		WebURL:     item.WebURL,
	}, nil
}

func (r *Resolver) find(ctx context.Context, job docstore.Location, name string) (Destination, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	items, err := r.store.ListFolders(callCtx, job)
	if err != nil {
		return Destination{}, false, err
	}
	for _, it := range items {
		if sameName(it.Name, name) {
			return Destination{
				FolderName: it.Name,
				Location:   it.Location,
				WebURL:     it.WebURL,
				Existed:    true,
			}, true, nil
		}
	}
	return Destination{}, false, nil
}
