package clients

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MGhunch/dot-file/pkg/query"
	"github.com/MGhunch/dot-file/pkg/repository"
)

var projection = query.NewProjection("clients", "c").
	Field("Code", "code").
	Field("Name", "name").
	Field("SiteID", "site_id").
	Field("DocumentRoot", "document_root").
	Field("CreatedAt", "created_at")

func scanClient(s repository.Scanner) (Client, error) {
	var c Client
	err := s.Scan(&c.Code, &c.Name, &c.SiteID, &c.DocumentRoot, &c.CreatedAt)
	return c, err
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a PostgreSQL-backed client directory.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{db: db, logger: logger.With("system", "clients")}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, code string) (*Client, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrNotFound)
	}

	q, args := query.NewBuilder(projection).EqualsFold("Code", code).One()
	c, err := repository.QueryOne(ctx, r.db, q, args, scanClient)
	if err != nil {
		return nil, fmt.Errorf("client %q: %w", code, repository.MapError(err, ErrNotFound, errDuplicate))
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context) ([]Client, error) {
	q, args := query.NewBuilder(projection, query.Order{Field: "Code"}).Select()
	list, err := repository.QueryMany(ctx, r.db, q, args, scanClient)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return list, nil
}
