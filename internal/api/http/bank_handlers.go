package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/bank"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

func CreateCategoryHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		c, err := store.CreateCategory(r.Context(), bank.Category{SchoolID: id.SchoolID, Name: req.Name})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func UpdateCategoryHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		c, err := store.UpdateCategory(r.Context(), id.SchoolID, chi.URLParam(r, "categoryID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCategoryHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		if err := store.DeleteCategory(r.Context(), id.SchoolID, chi.URLParam(r, "categoryID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type questionRequest struct {
	CategoryID    *string         `json:"category_id,omitempty"`
	Subject       *string         `json:"subject,omitempty"`
	Type          string          `json:"type" validate:"required"`
	Prompt        string          `json:"prompt" validate:"required"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`
	Points        int             `json:"points" validate:"required,min=1"`
	Difficulty    *string         `json:"difficulty,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

func (req questionRequest) toQuestion(schoolID string) bank.Question {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return bank.Question{
		SchoolID:      schoolID,
		CategoryID:    req.CategoryID,
		Subject:       req.Subject,
		Type:          req.Type,
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Difficulty:    req.Difficulty,
		Tags:          req.Tags,
		IsActive:      active,
	}
}

func CreateQuestionHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		q, err := store.CreateQuestion(r.Context(), req.toQuestion(id.SchoolID))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func UpdateQuestionHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id := auth.IdentityFromContext(r.Context())
		q := req.toQuestion(id.SchoolID)
		q.ID = chi.URLParam(r, "questionID")
		out, err := store.UpdateQuestion(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func DeleteQuestionHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		if err := store.DeleteQuestion(r.Context(), id.SchoolID, chi.URLParam(r, "questionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /questions?category_id=...&subject=...&active=true
func ListQuestionsHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		f := bank.Filter{
			CategoryID: r.URL.Query().Get("category_id"),
			Subject:    r.URL.Query().Get("subject"),
		}
		if v := r.URL.Query().Get("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				badRequest(w, "active must be a boolean")
				return
			}
			f.Active = &b
		}
		qs, err := store.ListQuestions(r.Context(), id.SchoolID, f)
		if err != nil {
			writeError(w, err)
			return
		}
		if qs == nil {
			qs = []bank.Question{}
		}
		writeJSON(w, http.StatusOK, qs)
	}
}
