package http

import (
	"encoding/json"
	"net/http"

	"github.com/edusphere/exam-engine/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine taxonomy onto HTTP statuses in one place.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch engine.KindOf(err) {
	case engine.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case engine.KindForbidden:
		status, msg = http.StatusForbidden, err.Error()
	case engine.KindConflict:
		status, msg = http.StatusConflict, err.Error()
	case engine.KindBadRequest:
		status, msg = http.StatusBadRequest, err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
