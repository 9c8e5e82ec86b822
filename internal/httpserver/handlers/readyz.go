package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/logger"
)

type readyzResponse struct {
	Ready   bool `json:"ready"`
	Store   bool `json:"store"`
	Browser bool `json:"browser"`
}

// Readyz gates on the bookmark backend. The browser link is reported but
// does not fail readiness: the store-only actions keep working without it.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := readyzResponse{Store: true, Browser: true}

		if d.StorePing != nil {
			if err := d.StorePing.Ping(ctx); err != nil {
				d.Logger.Warn("store ping failed", logger.Error(err))
				resp.Store = false
			}
		}
		if d.BrowserPing != nil {
			if err := d.BrowserPing.Ping(ctx); err != nil {
				d.Logger.Warn("browser ping failed", logger.Error(err))
				resp.Browser = false
			}
		} else {
			resp.Browser = false
		}

		resp.Ready = resp.Store
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, resp)
	}
}
