package projects

import (
	"log/slog"
	"net/http"

	"github.com/MGhunch/dot-file/pkg/handlers"
	"github.com/MGhunch/dot-file/pkg/routes"
)

// Handler serves read access to tracking records.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "projects")}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/projects",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key}", Handler: h.Find},
		},
	}
}

// Find returns a project by record id or job number.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	p, err := h.sys.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}
