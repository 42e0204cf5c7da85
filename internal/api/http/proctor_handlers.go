package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/proctor"
)

type proctorEventRequest struct {
	EventType string          `json:"event_type" validate:"required,max=64"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// POST /attempts/{attemptID}/events
func AppendProctorEventHandler(svc *proctor.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req proctorEventRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		e, err := svc.Append(r.Context(), id, chi.URLParam(r, "attemptID"), req.EventType, req.Details)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}
