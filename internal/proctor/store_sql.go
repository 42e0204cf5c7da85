package proctor

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/edusphere/exam-engine/internal/engine"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Append(ctx context.Context, e Event) (Event, error) {
	e.ID = uuid.NewString()
	var details any
	if len(e.Details) > 0 {
		details = string(e.Details)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proctor_events (id, school_id, attempt_id, event_type, details_json, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.SchoolID, e.AttemptID, e.EventType, details, e.CreatedAt)
	if err != nil {
		return Event{}, engine.Internal(err, "append proctor event")
	}
	return e, nil
}

// AttemptOwner adapts the attempts table into an AttemptChecker.
type AttemptOwner struct {
	db *sql.DB
}

func NewAttemptOwner(db *sql.DB) *AttemptOwner { return &AttemptOwner{db: db} }

func (o *AttemptOwner) OwnerOf(ctx context.Context, schoolID, attemptID string) (string, error) {
	var studentID string
	err := o.db.QueryRowContext(ctx,
		`SELECT student_id FROM attempts WHERE id=$1 AND school_id=$2`,
		attemptID, schoolID).Scan(&studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", engine.NotFound("attempt %s not found", attemptID)
	}
	if err != nil {
		return "", engine.Internal(err, "lookup attempt owner")
	}
	return studentID, nil
}
