package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edusphere/exam-engine/internal/engine"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", engine.NotFound("attempt att-1 not found"), http.StatusNotFound, "attempt att-1 not found"},
		{"forbidden", engine.Forbidden("attempt limit of 2 reached"), http.StatusForbidden, "attempt limit of 2 reached"},
		{"conflict", engine.Conflict("schedule already configured"), http.StatusConflict, "schedule already configured"},
		{"bad request", engine.BadRequest("no answers in batch"), http.StatusBadRequest, "no answers in batch"},
		{"internal detail is hidden", errors.New("pq: connection reset"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type = %q", ct)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body not json: %v", err)
			}
			if body["error"] != tc.wantMsg {
				t.Fatalf("error = %q, want %q", body["error"], tc.wantMsg)
			}
		})
	}
}
