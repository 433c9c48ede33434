package gateway

import (
	"net/http"
	"time"

	"github.com/florianilch/agentgate/internal/modelalias"
)

// modelEntry is one item of the OpenAI /v1/models listing.
type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// modelList is the OpenAI list envelope.
type modelList struct {
	Object string       `json:"object"`
	Data   []modelEntry `json:"data"`
}

// modelsHandler lists the configured aliases in OpenAI model-list format.
// Clients select models by alias; concrete upstream identifiers stay private
// to the gateway, including fallback chains.
func modelsHandler(aliases *modelalias.Table) http.HandlerFunc {
	created := time.Now().Unix()

	return func(w http.ResponseWriter, r *http.Request) {
		names := aliases.Names()
		list := modelList{
			Object: "list",
			Data:   make([]modelEntry, 0, len(names)),
		}
		for _, name := range names {
			list.Data = append(list.Data, modelEntry{
				ID:      name,
				Object:  "model",
				Created: created,
				OwnedBy: "agentgate",
			})
		}

		writeJSON(r.Context(), w, list, http.StatusOK)
	}
}
