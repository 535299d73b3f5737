package endpoints

import (
	"log/slog"

	"github.com/cardexhq/cardex/internal/api"
	"github.com/cardexhq/cardex/internal/config"
	"github.com/cardexhq/cardex/internal/providers"
)

// Deps holds the services endpoints need.
type Deps struct {
	ConfigManager *config.Manager
	Registry      *providers.Registry
	Logger        *slog.Logger
}

// All returns all endpoint instances.
func All(deps Deps) []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&HealthzEndpoint{Deps: deps},
		&ModelsEndpoint{Deps: deps},
		&BatchEndpoint{Deps: deps},
	}
}
