package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pagemark/pagemark/internal/dispatch"
	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/logger"
)

// Message is the protocol endpoint: one request envelope in, one structured
// reply out. Protocol-level failures (bad action, missing fields) still
// answer 200 with success=false; only an unreadable body is an HTTP error.
func Message(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatch.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			d.Logger.Debug("unreadable message body", logger.Error(err))
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		resp := d.Dispatcher.Handle(r.Context(), req)
		respondJSON(w, http.StatusOK, resp)
	}
}
