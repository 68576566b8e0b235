package projects_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/projects"
	"github.com/MGhunch/dot-file/pkg/routes"
)

type mockSystem struct {
	findFn func(ctx context.Context, key string) (*projects.Project, error)
}

func (m *mockSystem) Handler() *projects.Handler {
	return projects.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Find(ctx context.Context, key string) (*projects.Project, error) {
	return m.findFn(ctx, key)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd projects.UpdateCommand) (*projects.Project, error) {
	return nil, fmt.Errorf("not implemented")
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{findFn: func(ctx context.Context, key string) (*projects.Project, error) {
		if key != "SKY 045" {
			return nil, projects.ErrNotFound
		}
		return &projects.Project{JobNumber: key, Round: 2, LastFiledTo: classification.Round, Version: 7}, nil
	}}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/projects/SKY%20045", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got projects.Project
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Round != 2 || got.LastFiledTo != classification.Round || got.Version != 7 {
		t.Errorf("got %+v", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/projects/NOPE", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{projects.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", projects.ErrVersionConflict), http.StatusConflict},
		{projects.ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := projects.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
