package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MGhunch/dot-file/pkg/query"
	"github.com/MGhunch/dot-file/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a PostgreSQL-backed project System.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "projects"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, key string) (*Project, error) {
	key = strings.TrimSpace(key)
	b := query.NewBuilder(projection)
	if id, err := uuid.Parse(key); err == nil {
		b.Equals("ID", id)
	} else {
		b.EqualsFold("JobNumber", key)
	}

	q, args := b.One()
	p, err := repository.QueryOne(ctx, r.db, q, args, scanProject)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Project, error) {
	q := `
		UPDATE projects SET
			round = COALESCE($2, round),
			last_filed_to = COALESCE($3, last_filed_to),
			latest_folder_url = COALESCE($4, latest_folder_url),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND ($5::int IS NULL OR version = $5)
		RETURNING ` + returning

	args := []any{id, cmd.Round, nullableCategory(cmd.LastFiledTo), cmd.LatestFolderURL, cmd.ExpectedVersion}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Project, error) {
		return repository.QueryOne(ctx, tx, q, args, scanProject)
	})
	if err == nil {
		r.logger.InfoContext(ctx, "project updated", "job", p.JobNumber, "round", p.Round, "version", p.Version)
		return &p, nil
	}

	if repository.IsRetryable(err) && cmd.ExpectedVersion != nil {
		return nil, fmt.Errorf("%w: %v", ErrVersionConflict, err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	if cmd.ExpectedVersion == nil {
		return nil, ErrNotFound
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)", id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check project %s: %w", id, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: expected version %d", ErrVersionConflict, *cmd.ExpectedVersion)
}
