package api

import (
	"net/http"

	"github.com/MGhunch/dot-file/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	folders := newFoldersHandler(runtime.Docstore, runtime.Logger)

	routes.Register(
		mux,
		domain.Filing.Handler().Routes(),
		domain.Projects.Handler().Routes(),
		domain.Clients.Handler().Routes(),
		domain.Activity.Handler().Routes(),
		folders.routes(),
	)
}
