package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/edusphere/exam-engine/internal/engine"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateCategory(ctx context.Context, c Category) (Category, error) {
	c.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO question_categories (id, school_id, name) VALUES ($1,$2,$3)`,
		c.ID, c.SchoolID, c.Name)
	if err != nil {
		return Category{}, engine.Internal(err, "create category")
	}
	return c, nil
}

func (s *SQLStore) UpdateCategory(ctx context.Context, schoolID, id, name string) (Category, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE question_categories SET name=$1 WHERE id=$2 AND school_id=$3`,
		name, id, schoolID)
	if err != nil {
		return Category{}, engine.Internal(err, "update category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Category{}, engine.NotFound("category %s not found", id)
	}
	return Category{ID: id, SchoolID: schoolID, Name: name}, nil
}

func (s *SQLStore) DeleteCategory(ctx context.Context, schoolID, id string) error {
	var refs int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE category_id=$1 AND school_id=$2`,
		id, schoolID).Scan(&refs)
	if err != nil {
		return engine.Internal(err, "count category references")
	}
	if refs > 0 {
		return engine.Conflict("category %s is referenced by %d question(s)", id, refs)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM question_categories WHERE id=$1 AND school_id=$2`, id, schoolID)
	if err != nil {
		// A question created between the check and the delete trips the FK.
		if isFKViolation(err) {
			return engine.Conflict("category %s is referenced", id)
		}
		return engine.Internal(err, "delete category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("category %s not found", id)
	}
	return nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if !KnownType(q.Type) {
		return Question{}, engine.BadRequest("unknown question type %q", q.Type)
	}
	q.ID = uuid.NewString()
	if q.CategoryID != nil {
		if err := s.categoryInScope(ctx, q.SchoolID, *q.CategoryID); err != nil {
			return Question{}, err
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions
		  (id, school_id, category_id, subject, qtype, prompt, options_json,
		   correct_answer_json, points, difficulty, tags_json, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		q.ID, q.SchoolID, q.CategoryID, q.Subject, q.Type, q.Prompt,
		rawToNull(q.Options), rawToNull(q.CorrectAnswer),
		q.Points, q.Difficulty, tagsToNull(q.Tags), q.IsActive)
	if err != nil {
		return Question{}, engine.Internal(err, "create question")
	}
	return q, nil
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) (Question, error) {
	if !KnownType(q.Type) {
		return Question{}, engine.BadRequest("unknown question type %q", q.Type)
	}
	if q.CategoryID != nil {
		if err := s.categoryInScope(ctx, q.SchoolID, *q.CategoryID); err != nil {
			return Question{}, err
		}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE questions SET
		  category_id=$1, subject=$2, qtype=$3, prompt=$4, options_json=$5,
		  correct_answer_json=$6, points=$7, difficulty=$8, tags_json=$9, is_active=$10
		WHERE id=$11 AND school_id=$12`,
		q.CategoryID, q.Subject, q.Type, q.Prompt,
		rawToNull(q.Options), rawToNull(q.CorrectAnswer),
		q.Points, q.Difficulty, tagsToNull(q.Tags), q.IsActive,
		q.ID, q.SchoolID)
	if err != nil {
		return Question{}, engine.Internal(err, "update question")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Question{}, engine.NotFound("question %s not found", q.ID)
	}
	return q, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, schoolID, id string) error {
	var refs int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM config_questions WHERE question_id=$1`, id).Scan(&refs)
	if err != nil {
		return engine.Internal(err, "count question references")
	}
	if refs > 0 {
		return engine.Conflict("question %s is used by %d exam config(s)", id, refs)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM questions WHERE id=$1 AND school_id=$2`, id, schoolID)
	if err != nil {
		if isFKViolation(err) {
			return engine.Conflict("question %s is referenced", id)
		}
		return engine.Internal(err, "delete question")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("question %s not found", id)
	}
	return nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, schoolID, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, category_id, subject, qtype, prompt, options_json,
		       correct_answer_json, points, difficulty, tags_json, is_active
		FROM questions WHERE id=$1 AND school_id=$2`, id, schoolID)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, engine.NotFound("question %s not found", id)
	}
	if err != nil {
		return Question{}, engine.Internal(err, "get question")
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, schoolID string, f Filter) ([]Question, error) {
	query := `
		SELECT id, school_id, category_id, subject, qtype, prompt, options_json,
		       correct_answer_json, points, difficulty, tags_json, is_active
		FROM questions WHERE school_id=$1`
	args := []any{schoolID}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		query += ` AND category_id=$` + itoa(len(args))
	}
	if f.Subject != "" {
		args = append(args, f.Subject)
		query += ` AND subject=$` + itoa(len(args))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		query += ` AND is_active=$` + itoa(len(args))
	}
	query += ` ORDER BY prompt`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, engine.Internal(err, "list questions")
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, engine.Internal(err, "scan question")
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) categoryInScope(ctx context.Context, schoolID, categoryID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM question_categories WHERE id=$1 AND school_id=$2`,
		categoryID, schoolID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.NotFound("category %s not found", categoryID)
	}
	if err != nil {
		return engine.Internal(err, "check category")
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanQuestion(r rowScanner) (Question, error) {
	var (
		q          Question
		options    sql.NullString
		answer     sql.NullString
		tags       sql.NullString
		categoryID sql.NullString
		subject    sql.NullString
		difficulty sql.NullString
	)
	err := r.Scan(&q.ID, &q.SchoolID, &categoryID, &subject, &q.Type, &q.Prompt,
		&options, &answer, &q.Points, &difficulty, &tags, &q.IsActive)
	if err != nil {
		return Question{}, err
	}
	q.CategoryID = nullToPtr(categoryID)
	q.Subject = nullToPtr(subject)
	q.Difficulty = nullToPtr(difficulty)
	if options.Valid {
		q.Options = json.RawMessage(options.String)
	}
	if answer.Valid {
		q.CorrectAnswer = json.RawMessage(answer.String)
	}
	if tags.Valid && tags.String != "" {
		_ = json.Unmarshal([]byte(tags.String), &q.Tags)
	}
	return q, nil
}

func rawToNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func tagsToNull(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func nullToPtr(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func itoa(n int) string { return strconv.Itoa(n) }

// isFKViolation matches sqlite and postgres foreign-key errors without
// importing driver-specific error types.
func isFKViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}
