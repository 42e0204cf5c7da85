package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edusphere/exam-engine/internal/attempt"
	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/rbac"
)

type startAttemptResponse struct {
	Attempt   attempt.Attempt        `json:"attempt"`
	Questions []attempt.ExamQuestion `json:"questions"`
}

// POST /exam-configs/{configID}/attempts
func StartAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		a, questions, err := svc.Start(r.Context(), id,
			chi.URLParam(r, "configID"), clientIP(r), r.UserAgent())
		if err != nil {
			writeError(w, err)
			return
		}
		if questions == nil {
			questions = []attempt.ExamQuestion{}
		}
		writeJSON(w, http.StatusCreated, startAttemptResponse{Attempt: a, Questions: questions})
	}
}

// GET /attempts/{attemptID}/questions
func AttemptQuestionsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		questions, err := svc.Questions(r.Context(), id, chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if questions == nil {
			questions = []attempt.ExamQuestion{}
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

type saveAnswersRequest struct {
	Answers []attempt.AnswerUpsert `json:"answers" validate:"required,min=1,dive"`
}

// POST /attempts/{attemptID}/answers
func SaveAnswersHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveAnswersRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		if err := svc.SaveAnswers(r.Context(), id, chi.URLParam(r, "attemptID"), req.Answers); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		a, err := svc.Submit(r.Context(), id, chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		viewAll := rbacChecker.Has(rbac.RoleFromContext(r.Context()), "attempt:view-all")
		a, err := svc.Get(r.Context(), id, chi.URLParam(r, "attemptID"), viewAll)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID}/answers
func AttemptAnswersHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		viewAll := rbacChecker.Has(rbac.RoleFromContext(r.Context()), "attempt:view-all")
		answers, err := svc.Answers(r.Context(), id, chi.URLParam(r, "attemptID"), viewAll)
		if err != nil {
			writeError(w, err)
			return
		}
		if answers == nil {
			answers = []attempt.Answer{}
		}
		writeJSON(w, http.StatusOK, answers)
	}
}

// GET /attempts?config_id=...&student_id=...&status=...&limit=50&offset=0
// Staff/admin only (router enforces attempt:view-all).
func ListAttemptsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		opts := attempt.ListOpts{
			ConfigID:  strings.TrimSpace(r.URL.Query().Get("config_id")),
			StudentID: strings.TrimSpace(r.URL.Query().Get("student_id")),
			Status:    strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		}
		list, err := svc.List(r.Context(), id.SchoolID, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []attempt.Attempt{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

var rbacChecker = rbac.NewChecker(nil)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// clientIP prefers the middleware-resolved RealIP and falls back to the
// socket address without its port. RealIP can leave a bare IP (including
// IPv6 like "::1") in RemoteAddr, so a missing port is not an error.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
