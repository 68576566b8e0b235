package filing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MGhunch/dot-file/pkg/handlers"
	"github.com/MGhunch/dot-file/pkg/routes"
)

// Handler serves the filing endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "filing")}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/file",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.File},
		},
	}
}

// File decodes a filing request and runs it. Handled outcomes are always
// answered with a Result body; a failed filing carries the status of its cause.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		err = fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		h.logger.Warn("filing request rejected", "error", err)
		handlers.RespondJSON(w, status, failed(req, err))
		return
	}

	result, err := h.sys.File(r.Context(), req)
	if err != nil {
		h.logger.Warn("filing request rejected", "error", err)
		handlers.RespondJSON(w, MapHTTPStatus(err), failed(req, err))
		return
	}

	status := http.StatusOK
	if result.State == StateFailed {
		status = MapHTTPStatus(result.cause)
	}
	handlers.RespondJSON(w, status, result)
}
