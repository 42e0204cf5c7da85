// Package school defines the contracts the exam engine consumes from the
// surrounding school-management system: schedule/exam resolution, enrollment
// and student-binding lookups, the gradebook write, and the audit sink.
// SQL implementations against the shared schema live beside the interfaces so
// the engine runs standalone; a larger deployment can swap them out.
package school

import (
	"context"
	"database/sql"
)

// Schedule is a resolved exam schedule: the schedule row joined through its
// parent exam and academic year, all verified to sit inside one scope.
type Schedule struct {
	ID        string
	ExamID    string
	ClassID   string
	Subject   string
	MaxMarks  float64
	Published bool
}

type Student struct {
	ID       string
	FullName string
}

const (
	// MarkRemark tags machine-generated gradebook marks so they are
	// distinguishable from manually entered ones.
	MarkRemark = "auto:online-exam"
)

// Execer is satisfied by both *sql.DB and *sql.Tx, so the gradebook write can
// participate in the submit transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Directory resolves external entities within one scope. Every method treats
// an out-of-scope row exactly like a missing one.
type Directory interface {
	// ResolveSchedule walks schedule -> exam -> academic year and verifies
	// each hop belongs to schoolID.
	ResolveSchedule(ctx context.Context, schoolID, scheduleID string) (Schedule, error)
	// StudentByID verifies a student record exists in scope.
	StudentByID(ctx context.Context, schoolID, studentID string) (Student, error)
	// ActivelyEnrolled reports whether the student has an active enrollment
	// in classID for the school's current academic year.
	ActivelyEnrolled(ctx context.Context, schoolID, studentID, classID string) (bool, error)
}

// Gradebook upserts a single numeric mark keyed by (schedule, student),
// overwriting any prior value and flagging the entry non-absent.
type Gradebook interface {
	UpsertMark(ctx context.Context, ex Execer, schoolID, scheduleID, studentID string, value float64) error
}

// AuditEvent is one structured action record.
type AuditEvent struct {
	SchoolID string
	Actor    string
	Type     string // e.g. "attempt.submitted"
	Key      string // entity id
	DataJSON string
}

// AuditSink appends action records. Post-commit appends are best-effort:
// callers log failures but do not roll back committed work.
type AuditSink interface {
	Append(ctx context.Context, e AuditEvent) error
}
