package school

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edusphere/exam-engine/internal/engine"
)

type SQLDirectory struct {
	db *sql.DB
}

func NewSQLDirectory(db *sql.DB) *SQLDirectory { return &SQLDirectory{db: db} }

func (d *SQLDirectory) ResolveSchedule(ctx context.Context, schoolID, scheduleID string) (Schedule, error) {
	var s Schedule
	err := d.db.QueryRowContext(ctx, `
		SELECT sch.id, sch.exam_id, sch.class_id, sch.subject, sch.max_marks, e.is_published
		FROM exam_schedules sch
		JOIN exams e ON e.id = sch.exam_id AND e.school_id = sch.school_id
		JOIN academic_years y ON y.id = e.academic_year_id AND y.school_id = sch.school_id
		JOIN classes c ON c.id = sch.class_id AND c.school_id = sch.school_id
		WHERE sch.id = $1 AND sch.school_id = $2`,
		scheduleID, schoolID,
	).Scan(&s.ID, &s.ExamID, &s.ClassID, &s.Subject, &s.MaxMarks, &s.Published)
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, engine.NotFound("exam schedule %s not found", scheduleID)
	}
	if err != nil {
		return Schedule{}, engine.Internal(err, "resolve schedule")
	}
	return s, nil
}

func (d *SQLDirectory) StudentByID(ctx context.Context, schoolID, studentID string) (Student, error) {
	var st Student
	err := d.db.QueryRowContext(ctx,
		`SELECT id, full_name FROM students WHERE id = $1 AND school_id = $2`,
		studentID, schoolID,
	).Scan(&st.ID, &st.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, engine.Forbidden("no student record in scope")
	}
	if err != nil {
		return Student{}, engine.Internal(err, "lookup student")
	}
	return st, nil
}

func (d *SQLDirectory) ActivelyEnrolled(ctx context.Context, schoolID, studentID, classID string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, `
		SELECT 1
		FROM enrollments en
		JOIN academic_years y ON y.id = en.academic_year_id AND y.school_id = en.school_id
		WHERE en.school_id = $1 AND en.student_id = $2 AND en.class_id = $3
		  AND en.is_active AND y.is_current`,
		schoolID, studentID, classID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, engine.Internal(err, "check enrollment")
	}
	return true, nil
}
