package school

import (
	"context"

	"github.com/google/uuid"

	"github.com/edusphere/exam-engine/internal/engine"
)

// SQLGradebook writes marks into the shared marks table. It runs on an Execer
// so the submit path can include the write in its transaction.
type SQLGradebook struct{}

func NewSQLGradebook() *SQLGradebook { return &SQLGradebook{} }

func (g *SQLGradebook) UpsertMark(ctx context.Context, ex Execer, schoolID, scheduleID, studentID string, value float64) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO marks (id, school_id, schedule_id, student_id, value, is_absent, remark)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		ON CONFLICT (schedule_id, student_id) DO UPDATE SET
		  value = EXCLUDED.value,
		  is_absent = FALSE,
		  remark = EXCLUDED.remark`,
		uuid.NewString(), schoolID, scheduleID, studentID, value, MarkRemark)
	if err != nil {
		return engine.Internal(err, "upsert gradebook mark")
	}
	return nil
}
