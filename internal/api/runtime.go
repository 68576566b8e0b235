package api

import (
	"github.com/MGhunch/dot-file/internal/config"
	"github.com/MGhunch/dot-file/internal/infrastructure"
	"github.com/MGhunch/dot-file/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Filing     config.FilingConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Agent:     infra.Agent,
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Docstore:  infra.Docstore,
		},
		Pagination: cfg.API.Pagination,
		Filing:     cfg.Filing,
	}
}
