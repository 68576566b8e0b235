package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MGhunch/dot-file/pkg/docstore"
	"github.com/MGhunch/dot-file/pkg/handlers"
	"github.com/MGhunch/dot-file/pkg/routes"
)

type foldersHandler struct {
	store  docstore.System
	logger *slog.Logger
}

func newFoldersHandler(store docstore.System, logger *slog.Logger) *foldersHandler {
	return &foldersHandler{
		store:  store,
		logger: logger.With("handler", "folders"),
	}
}

func (h *foldersHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/folders",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{site}", Handler: h.list},
			{Method: "GET", Pattern: "/{site}/{path...}", Handler: h.list},
		},
	}
}

// list returns the subfolders of a document store folder, e.g. to check
// which job folders a client's document root holds.
func (h *foldersHandler) list(w http.ResponseWriter, r *http.Request) {
	folder := docstore.Location{
		Site: r.PathValue("site"),
		Path: r.PathValue("path"),
	}

	items, err := h.store.ListFolders(r.Context(), folder)
	if err != nil {
		handlers.RespondError(w, h.logger, mapDocstoreStatus(err), err)
		return
	}
	if items == nil {
		items = []docstore.Item{}
	}
	handlers.RespondJSON(w, http.StatusOK, items)
}

func mapDocstoreStatus(err error) int {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrInvalidLocation):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
