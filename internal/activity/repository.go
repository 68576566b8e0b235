package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MGhunch/dot-file/pkg/pagination"
	"github.com/MGhunch/dot-file/pkg/query"
	"github.com/MGhunch/dot-file/pkg/repository"
)

var projection = query.NewProjection("filing_activity", "a").
	Field("ID", "id").
	Field("JobNumber", "job_number").
	Field("ClientCode", "client_code").
	Field("State", "state").
	Field("Category", "category").
	Field("Source", "source").
	Field("Destination", "destination").
	Field("Path", "path").
	Field("Files", "files").
	Field("FiledAt", "filed_at")

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e     Entry
		files []byte
	)
	if err := s.Scan(&e.ID, &e.JobNumber, &e.ClientCode, &e.State, &e.Category, &e.Source, &e.Destination, &e.Path, &files, &e.FiledAt); err != nil {
		return e, err
	}
	if err := json.Unmarshal(files, &e.Files); err != nil {
		return e, fmt.Errorf("decode files: %w", err)
	}
	return e, nil
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a PostgreSQL-backed activity log.
func New(db *sql.DB, logger *slog.Logger, cfg pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "activity"),
		pagination: cfg,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Files == nil {
		e.Files = []string{}
	}
	files, err := json.Marshal(e.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	q := `
		INSERT INTO filing_activity(id, job_number, client_code, state, category, source, destination, path, files)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)`

	if err := repository.ExecExpectOne(ctx, r.db, q, e.ID, e.JobNumber, e.ClientCode, e.State, e.Category, e.Source, e.Destination, e.Path, string(files)); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	b := query.NewBuilder(projection, query.Order{Field: "FiledAt", Desc: true}).
		EqualsFold("JobNumber", filters.JobNumber).
		Equals("State", filters.State)

	countSQL, countArgs := b.Count()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}

	pageSQL, pageArgs := b.Page(page.PageSize, page.Offset())
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page)
	return &result, nil
}
