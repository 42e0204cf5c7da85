package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/edusphere/exam-engine/internal/engine"
	"github.com/edusphere/exam-engine/internal/school"
	"github.com/edusphere/exam-engine/internal/scoring"
)

type SQLStore struct {
	db        *sql.DB
	driver    string // "sqlite" or "postgres"
	gradebook school.Gradebook
}

func NewSQLStore(db *sql.DB, driver string, gb school.Gradebook) *SQLStore {
	return &SQLStore{db: db, driver: driver, gradebook: gb}
}

// forUpdate returns the row-lock clause for drivers that support it. On
// sqlite the single-writer lock serializes the competing transactions anyway.
func (s *SQLStore) forUpdate() string {
	if s.driver == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

func (s *SQLStore) Create(ctx context.Context, a Attempt, limit int) (Attempt, error) {
	// The unique (config_id, student_id, attempt_no) index backstops the
	// count-then-insert race: if two starts read the same count, one insert
	// fails and is retried against the fresh count.
	for tries := 0; tries < 2; tries++ {
		out, err := s.tryCreate(ctx, a, limit)
		if err != nil && isUniqueViolation(err) {
			continue
		}
		return out, err
	}
	return Attempt{}, engine.Conflict("concurrent attempt start, retry")
}

func (s *SQLStore) tryCreate(ctx context.Context, a Attempt, limit int) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, engine.Internal(err, "begin create attempt")
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE config_id=$1 AND student_id=$2`,
		a.ConfigID, a.StudentID).Scan(&count); err != nil {
		return Attempt{}, engine.Internal(err, "count attempts")
	}
	a.AttemptNo = count + 1
	if a.AttemptNo > limit {
		return Attempt{}, engine.Forbidden("attempt limit of %d reached", limit)
	}

	a.ID = uuid.NewString()
	a.Status = StatusInProgress
	_, err = tx.ExecContext(ctx, `
		INSERT INTO attempts
		  (id, school_id, config_id, student_id, attempt_no, status, started_at,
		   ip_address, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.SchoolID, a.ConfigID, a.StudentID, a.AttemptNo, a.Status,
		a.StartedAt, a.IPAddress, a.UserAgent)
	if err != nil {
		if isUniqueViolation(err) {
			return Attempt{}, err
		}
		return Attempt{}, engine.Internal(err, "insert attempt")
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, engine.Internal(err, "commit create attempt")
	}
	return a, nil
}

func (s *SQLStore) Get(ctx context.Context, schoolID, id string) (Attempt, error) {
	return getAttempt(ctx, s.db, schoolID, id, "")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getAttempt(ctx context.Context, q querier, schoolID, id, lock string) (Attempt, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, config_id, student_id, attempt_no, status,
		       started_at, submitted_at, score, max_score, percentage,
		       ip_address, user_agent
		FROM attempts WHERE id=$1 AND school_id=$2`+lock, id, schoolID)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, engine.NotFound("attempt %s not found", id)
	}
	if err != nil {
		return Attempt{}, engine.Internal(err, "get attempt")
	}
	return a, nil
}

func (s *SQLStore) List(ctx context.Context, schoolID string, opts ListOpts) ([]Attempt, error) {
	query := `
		SELECT id, school_id, config_id, student_id, attempt_no, status,
		       started_at, submitted_at, score, max_score, percentage,
		       ip_address, user_agent
		FROM attempts WHERE school_id=$1`
	args := []any{schoolID}
	add := func(clause string, v any) {
		args = append(args, v)
		query += ` AND ` + clause + `$` + itoa(len(args))
	}
	if opts.ConfigID != "" {
		add("config_id=", opts.ConfigID)
	}
	if opts.StudentID != "" {
		add("student_id=", opts.StudentID)
	}
	if opts.Status != "" {
		add("status=", opts.Status)
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query += ` ORDER BY started_at DESC, attempt_no DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, engine.Internal(err, "list attempts")
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, engine.Internal(err, "scan attempt")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ConfigItems(ctx context.Context, schoolID, configID string) ([]ConfigItem, error) {
	return configItems(ctx, s.db, schoolID, configID)
}

func configItems(ctx context.Context, q querier, schoolID, configID string) ([]ConfigItem, error) {
	var total int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM config_questions WHERE config_id=$1 AND school_id=$2`,
		configID, schoolID).Scan(&total); err != nil {
		return nil, engine.Internal(err, "count config questions")
	}

	rows, err := q.QueryContext(ctx, `
		SELECT cq.question_id, q.qtype, q.prompt, q.options_json,
		       q.correct_answer_json, COALESCE(cq.points_override, q.points),
		       cq.order_index, q.is_active
		FROM config_questions cq
		JOIN questions q ON q.id = cq.question_id AND q.school_id = cq.school_id
		WHERE cq.config_id=$1 AND cq.school_id=$2
		ORDER BY cq.order_index, cq.question_id`, configID, schoolID)
	if err != nil {
		return nil, engine.Internal(err, "load config questions")
	}
	defer rows.Close()

	var out []ConfigItem
	for rows.Next() {
		var (
			it      ConfigItem
			options sql.NullString
			answer  sql.NullString
		)
		if err := rows.Scan(&it.QuestionID, &it.Type, &it.Prompt, &options,
			&answer, &it.Points, &it.OrderIndex, &it.Active); err != nil {
			return nil, engine.Internal(err, "scan config question")
		}
		if options.Valid {
			it.Options = json.RawMessage(options.String)
		}
		if answer.Valid {
			it.CorrectAnswer = json.RawMessage(answer.String)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, engine.Internal(err, "read config questions")
	}
	// A question that fell out of the join points outside the scope. Failing
	// the whole load keeps max_score honest; skipping would corrupt it.
	if len(out) != total {
		return nil, engine.NotFound("exam config %s references questions outside scope", configID)
	}
	return out, nil
}

func (s *SQLStore) UpsertAnswers(ctx context.Context, schoolID, attemptID string, now int64, items []AnswerUpsert) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Internal(err, "begin upsert answers")
	}
	defer tx.Rollback()

	a, err := getAttempt(ctx, tx, schoolID, attemptID, s.forUpdate())
	if err != nil {
		return err
	}
	if a.Status != StatusInProgress {
		return engine.Forbidden("attempt %s is not in progress", attemptID)
	}

	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO answers (id, school_id, attempt_id, question_id, answer_json, answered_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (attempt_id, question_id) DO UPDATE SET
			  answer_json = EXCLUDED.answer_json,
			  answered_at = EXCLUDED.answered_at`,
			uuid.NewString(), schoolID, attemptID, it.QuestionID,
			rawToNull(it.Answer), now)
		if err != nil {
			return engine.Internal(err, "upsert answer")
		}
	}
	if err := tx.Commit(); err != nil {
		return engine.Internal(err, "commit upsert answers")
	}
	return nil
}

func (s *SQLStore) Answers(ctx context.Context, schoolID, attemptID string) ([]Answer, error) {
	return attemptAnswers(ctx, s.db, schoolID, attemptID)
}

func attemptAnswers(ctx context.Context, q querier, schoolID, attemptID string) ([]Answer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, school_id, attempt_id, question_id, answer_json, is_correct,
		       awarded_points, answered_at
		FROM answers WHERE attempt_id=$1 AND school_id=$2
		ORDER BY answered_at, question_id`, attemptID, schoolID)
	if err != nil {
		return nil, engine.Internal(err, "load answers")
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var (
			a       Answer
			payload sql.NullString
			correct sql.NullBool
			awarded sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.SchoolID, &a.AttemptID, &a.QuestionID,
			&payload, &correct, &awarded, &a.AnsweredAt); err != nil {
			return nil, engine.Internal(err, "scan answer")
		}
		if payload.Valid {
			a.Answer = json.RawMessage(payload.String)
		}
		if correct.Valid {
			a.IsCorrect = &correct.Bool
		}
		if awarded.Valid {
			v := int(awarded.Int64)
			a.AwardedPoints = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) Submit(ctx context.Context, schoolID, attemptID string, now int64, sched school.Schedule) (Attempt, scoring.Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, scoring.Result{}, engine.Internal(err, "begin submit")
	}
	defer tx.Rollback()

	a, err := getAttempt(ctx, tx, schoolID, attemptID, s.forUpdate())
	if err != nil {
		return Attempt{}, scoring.Result{}, err
	}
	if a.Status != StatusInProgress {
		return Attempt{}, scoring.Result{}, engine.Forbidden("attempt %s is not in progress", attemptID)
	}

	items, err := configItems(ctx, tx, schoolID, a.ConfigID)
	if err != nil {
		return Attempt{}, scoring.Result{}, err
	}
	answers, err := attemptAnswers(ctx, tx, schoolID, attemptID)
	if err != nil {
		return Attempt{}, scoring.Result{}, err
	}

	scoreItems := make([]scoring.Item, 0, len(items))
	for _, it := range items {
		scoreItems = append(scoreItems, scoring.Item{
			QuestionID:    it.QuestionID,
			Points:        it.Points,
			CorrectAnswer: it.CorrectAnswer,
		})
	}
	res := scoring.Score(scoreItems, answersByQuestion(answers))

	// Persist per-question grading; synthesize rows for unanswered questions
	// so every config question has an answer row after scoring.
	for _, qr := range res.Questions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO answers
			  (id, school_id, attempt_id, question_id, answer_json, is_correct,
			   awarded_points, answered_at)
			VALUES ($1,$2,$3,$4,NULL,$5,$6,$7)
			ON CONFLICT (attempt_id, question_id) DO UPDATE SET
			  is_correct = EXCLUDED.is_correct,
			  awarded_points = EXCLUDED.awarded_points`,
			uuid.NewString(), schoolID, attemptID, qr.QuestionID,
			qr.IsCorrect, qr.AwardedPoints, now)
		if err != nil {
			return Attempt{}, scoring.Result{}, engine.Internal(err, "grade answer")
		}
	}

	upd, err := tx.ExecContext(ctx, `
		UPDATE attempts SET status=$1, submitted_at=$2, score=$3, max_score=$4, percentage=$5
		WHERE id=$6 AND status=$7`,
		StatusSubmitted, now, res.Score, res.MaxScore, res.Percentage,
		attemptID, StatusInProgress)
	if err != nil {
		return Attempt{}, scoring.Result{}, engine.Internal(err, "finalize attempt")
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		return Attempt{}, scoring.Result{}, engine.Forbidden("attempt %s is not in progress", attemptID)
	}

	mark := scoring.Mark(sched.MaxMarks, res.Percentage)
	if err := s.gradebook.UpsertMark(ctx, tx, schoolID, sched.ID, a.StudentID, mark); err != nil {
		return Attempt{}, scoring.Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Attempt{}, scoring.Result{}, engine.Internal(err, "commit submit")
	}

	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	a.Score = &res.Score
	a.MaxScore = &res.MaxScore
	a.Percentage = &res.Percentage
	return a, res, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanAttempt(r rowScanner) (Attempt, error) {
	var (
		a           Attempt
		submittedAt sql.NullInt64
		score       sql.NullInt64
		maxScore    sql.NullInt64
		percentage  sql.NullFloat64
		ip          sql.NullString
		ua          sql.NullString
	)
	err := r.Scan(&a.ID, &a.SchoolID, &a.ConfigID, &a.StudentID, &a.AttemptNo,
		&a.Status, &a.StartedAt, &submittedAt, &score, &maxScore, &percentage,
		&ip, &ua)
	if err != nil {
		return Attempt{}, err
	}
	if submittedAt.Valid {
		a.SubmittedAt = &submittedAt.Int64
	}
	if score.Valid {
		v := int(score.Int64)
		a.Score = &v
	}
	if maxScore.Valid {
		v := int(maxScore.Int64)
		a.MaxScore = &v
	}
	if percentage.Valid {
		a.Percentage = &percentage.Float64
	}
	a.IPAddress = ip.String
	a.UserAgent = ua.String
	return a, nil
}

func rawToNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
