package api

import (
	"github.com/MGhunch/dot-file/internal/activity"
	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/clients"
	"github.com/MGhunch/dot-file/internal/filing"
	"github.com/MGhunch/dot-file/internal/projects"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Activity activity.System
	Clients  clients.System
	Filing   filing.System
	Projects projects.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	conn := runtime.Database.Connection()

	activitySystem := activity.New(conn, runtime.Logger, runtime.Pagination)
	clientsSystem := clients.New(conn, runtime.Logger)
	projectsSystem := projects.New(conn, runtime.Logger)

	classifier := classification.New(
		runtime.Filing.Policy(),
		newFallback(runtime),
		runtime.Logger,
	)

	filingSystem := filing.New(
		filing.Deps{
			Clients:    clientsSystem,
			Tracker:    projectsSystem,
			Store:      runtime.Docstore,
			Classifier: classifier,
			Activity:   activitySystem,
		},
		runtime.Filing.Settings(),
		runtime.Logger,
	)

	return &Domain{
		Activity: activitySystem,
		Clients:  clientsSystem,
		Filing:   filingSystem,
		Projects: projectsSystem,
	}
}

// newFallback builds the model classifier. Without one, inconclusive
// messages resolve to the unavailable result.
func newFallback(runtime *Runtime) classification.Fallback {
	inferer, err := classification.NewAgentInferer(&runtime.Agent)
	if err != nil {
		runtime.Logger.Warn("model classifier disabled", "error", err)
		return nil
	}
	return classification.NewModelClassifier(inferer, runtime.Filing.ModelTimeoutDuration(), runtime.Logger)
}
