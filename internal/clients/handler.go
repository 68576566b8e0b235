package clients

import (
	"log/slog"
	"net/http"

	"github.com/MGhunch/dot-file/pkg/handlers"
	"github.com/MGhunch/dot-file/pkg/routes"
)

// Handler serves the client directory.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "clients")}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/clients",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{code}", Handler: h.Find},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []Client{}
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	c, err := h.sys.Find(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, c)
}
