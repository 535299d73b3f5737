package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cardexhq/cardex/internal/api"
)

// ModelsResponse lists the default and allowed extraction models.
type ModelsResponse struct {
	Default string   `json:"default"`
	Allowed []string `json:"allowed"`
}

// ModelsEndpoint handles GET /models.
type ModelsEndpoint struct {
	Deps Deps
}

func (e *ModelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/models", e.handler
}

func (e *ModelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cfg := e.Deps.ConfigManager.Get()
	writeJSON(w, http.StatusOK, ModelsResponse{
		Default: cfg.Models.Default,
		Allowed: cfg.Models.Allowed,
	})
}

func (e *ModelsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List allowed extraction models",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ModelsResponse
			if err := client.Get(cmd.Context(), "/models", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
