package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pagemark/pagemark/internal/dispatch"
	"github.com/pagemark/pagemark/internal/httpserver/deps"
)

type captureRequest struct {
	TabID string `json:"tabId"`
}

type restoreRequest struct {
	TabID          string `json:"tabId"`
	ScrollPosition *int   `json:"scrollPosition"`
}

// CapturePosition reads the current position of a tab. The degradation
// contract is the dispatcher's: an unscriptable page answers success with
// position 0.
func CapturePosition(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req captureRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
				return
			}
		}

		resp := d.Dispatcher.Handle(r.Context(), dispatch.Request{
			Action: dispatch.ActionCapturePosition,
			TabID:  req.TabID,
		})
		respondJSON(w, http.StatusOK, resp)
	}
}

func RestorePosition(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		resp := d.Dispatcher.Handle(r.Context(), dispatch.Request{
			Action:         dispatch.ActionRestorePosition,
			TabID:          req.TabID,
			ScrollPosition: req.ScrollPosition,
		})
		respondJSON(w, http.StatusOK, resp)
	}
}
