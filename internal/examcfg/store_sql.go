package examcfg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/edusphere/exam-engine/internal/engine"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, c Config) (Config, error) {
	c.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exam_configs
		  (id, school_id, schedule_id, duration_minutes, shuffle_questions,
		   shuffle_options, allow_backtrack, proctoring_enabled, attempt_limit,
		   starts_at, ends_at, instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.SchoolID, c.ScheduleID, c.DurationMinutes, c.ShuffleQuestions,
		c.ShuffleOptions, c.AllowBacktrack, c.ProctoringEnabled, c.AttemptLimit,
		c.StartsAt, c.EndsAt, c.Instructions)
	if err != nil {
		if isUniqueViolation(err) {
			return Config{}, engine.Conflict("schedule %s already has an exam config", c.ScheduleID)
		}
		return Config{}, engine.Internal(err, "create exam config")
	}
	return c, nil
}

func (s *SQLStore) Get(ctx context.Context, schoolID, id string) (Config, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, schedule_id, duration_minutes, shuffle_questions,
		       shuffle_options, allow_backtrack, proctoring_enabled, attempt_limit,
		       starts_at, ends_at, instructions
		FROM exam_configs WHERE id=$1 AND school_id=$2`, id, schoolID)
	var (
		c            Config
		startsAt     sql.NullInt64
		endsAt       sql.NullInt64
		instructions sql.NullString
	)
	err := row.Scan(&c.ID, &c.SchoolID, &c.ScheduleID, &c.DurationMinutes,
		&c.ShuffleQuestions, &c.ShuffleOptions, &c.AllowBacktrack,
		&c.ProctoringEnabled, &c.AttemptLimit, &startsAt, &endsAt, &instructions)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, engine.NotFound("exam config %s not found", id)
	}
	if err != nil {
		return Config{}, engine.Internal(err, "get exam config")
	}
	if startsAt.Valid {
		c.StartsAt = &startsAt.Int64
	}
	if endsAt.Valid {
		c.EndsAt = &endsAt.Int64
	}
	if instructions.Valid {
		c.Instructions = &instructions.String
	}
	return c, nil
}

func (s *SQLStore) Update(ctx context.Context, c Config) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE exam_configs SET
		  duration_minutes=$1, shuffle_questions=$2, shuffle_options=$3,
		  allow_backtrack=$4, proctoring_enabled=$5, attempt_limit=$6,
		  starts_at=$7, ends_at=$8, instructions=$9
		WHERE id=$10 AND school_id=$11`,
		c.DurationMinutes, c.ShuffleQuestions, c.ShuffleOptions,
		c.AllowBacktrack, c.ProctoringEnabled, c.AttemptLimit,
		c.StartsAt, c.EndsAt, c.Instructions, c.ID, c.SchoolID)
	if err != nil {
		return engine.Internal(err, "update exam config")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("exam config %s not found", c.ID)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, schoolID, id string) error {
	var attempts int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE config_id=$1`, id).Scan(&attempts)
	if err != nil {
		return engine.Internal(err, "count config attempts")
	}
	if attempts > 0 {
		return engine.Conflict("exam config %s has %d attempt(s)", id, attempts)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM exam_configs WHERE id=$1 AND school_id=$2`, id, schoolID)
	if err != nil {
		// An attempt started between the check and the delete trips the FK.
		if isFKViolation(err) {
			return engine.Conflict("exam config %s has attempts", id)
		}
		return engine.Internal(err, "delete exam config")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.NotFound("exam config %s not found", id)
	}
	return nil
}

func (s *SQLStore) AddQuestions(ctx context.Context, schoolID, configID string, items []AddQuestion) ([]ConfigQuestion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, engine.Internal(err, "begin add questions")
	}
	defer tx.Rollback()

	var maxIdx sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM config_questions WHERE config_id=$1`,
		configID).Scan(&maxIdx); err != nil {
		return nil, engine.Internal(err, "read max order index")
	}
	next := int(maxIdx.Int64) + 1

	var added []ConfigQuestion
	for _, it := range items {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM config_questions WHERE config_id=$1 AND question_id=$2`,
			configID, it.QuestionID).Scan(&one)
		if err == nil {
			continue // already in config: skip silently
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, engine.Internal(err, "check duplicate question")
		}

		idx := next
		if it.OrderIndex != nil {
			idx = *it.OrderIndex
		} else {
			next++
		}
		cq := ConfigQuestion{
			ID:             uuid.NewString(),
			SchoolID:       schoolID,
			ConfigID:       configID,
			QuestionID:     it.QuestionID,
			OrderIndex:     idx,
			PointsOverride: it.PointsOverride,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO config_questions
			  (id, school_id, config_id, question_id, order_index, points_override)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			cq.ID, cq.SchoolID, cq.ConfigID, cq.QuestionID, cq.OrderIndex, cq.PointsOverride,
		); err != nil {
			return nil, engine.Internal(err, "insert config question")
		}
		added = append(added, cq)
	}
	if err := tx.Commit(); err != nil {
		return nil, engine.Internal(err, "commit add questions")
	}
	return added, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, schoolID, configID string) ([]ConfigQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, config_id, question_id, order_index, points_override
		FROM config_questions
		WHERE config_id=$1 AND school_id=$2
		ORDER BY order_index, question_id`, configID, schoolID)
	if err != nil {
		return nil, engine.Internal(err, "list config questions")
	}
	defer rows.Close()

	var out []ConfigQuestion
	for rows.Next() {
		var (
			cq       ConfigQuestion
			override sql.NullInt64
		)
		if err := rows.Scan(&cq.ID, &cq.SchoolID, &cq.ConfigID, &cq.QuestionID,
			&cq.OrderIndex, &override); err != nil {
			return nil, engine.Internal(err, "scan config question")
		}
		if override.Valid {
			v := int(override.Int64)
			cq.PointsOverride = &v
		}
		out = append(out, cq)
	}
	return out, rows.Err()
}

// isUniqueViolation matches sqlite and postgres unique-constraint errors
// without importing driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite / pg text
		strings.Contains(msg, "duplicate key") // pg 23505 text
}

func isFKViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}
