package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/examcfg"
)

type configRequest struct {
	ScheduleID        string  `json:"schedule_id" validate:"required"`
	DurationMinutes   int     `json:"duration_minutes" validate:"required,min=1"`
	ShuffleQuestions  bool    `json:"shuffle_questions"`
	ShuffleOptions    bool    `json:"shuffle_options"`
	AllowBacktrack    *bool   `json:"allow_backtrack,omitempty"`
	ProctoringEnabled bool    `json:"proctoring_enabled"`
	AttemptLimit      int     `json:"attempt_limit" validate:"required,min=1"`
	StartsAt          *int64  `json:"starts_at,omitempty"`
	EndsAt            *int64  `json:"ends_at,omitempty"`
	Instructions      *string `json:"instructions,omitempty"`
}

func CreateConfigHandler(svc *examcfg.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req configRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		backtrack := true
		if req.AllowBacktrack != nil {
			backtrack = *req.AllowBacktrack
		}
		c, err := svc.Create(r.Context(), examcfg.Config{
			SchoolID:          id.SchoolID,
			ScheduleID:        req.ScheduleID,
			DurationMinutes:   req.DurationMinutes,
			ShuffleQuestions:  req.ShuffleQuestions,
			ShuffleOptions:    req.ShuffleOptions,
			AllowBacktrack:    backtrack,
			ProctoringEnabled: req.ProctoringEnabled,
			AttemptLimit:      req.AttemptLimit,
			StartsAt:          req.StartsAt,
			EndsAt:            req.EndsAt,
			Instructions:      req.Instructions,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func GetConfigHandler(svc *examcfg.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		c, err := svc.Get(r.Context(), id.SchoolID, chi.URLParam(r, "configID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func PatchConfigHandler(svc *examcfg.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p examcfg.Patch
		if !decodeValid(w, r, &p) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		c, err := svc.Update(r.Context(), id.SchoolID, chi.URLParam(r, "configID"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteConfigHandler(svc *examcfg.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		if err := svc.Delete(r.Context(), id.SchoolID, chi.URLParam(r, "configID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type addQuestionsRequest struct {
	Questions []examcfg.AddQuestion `json:"questions" validate:"required,min=1,dive"`
}

// POST /exam-configs/{configID}/questions
func AddConfigQuestionsHandler(svc *examcfg.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addQuestionsRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		added, err := svc.AddQuestions(r.Context(), id.SchoolID, chi.URLParam(r, "configID"), req.Questions)
		if err != nil {
			writeError(w, err)
			return
		}
		if added == nil {
			added = []examcfg.ConfigQuestion{}
		}
		writeJSON(w, http.StatusCreated, added)
	}
}

func ListConfigQuestionsHandler(svc *examcfg.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		items, err := svc.ListQuestions(r.Context(), id.SchoolID, chi.URLParam(r, "configID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if items == nil {
			items = []examcfg.ConfigQuestion{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}
