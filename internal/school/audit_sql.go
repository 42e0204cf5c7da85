package school

import (
	"context"
	"database/sql"
	"time"
)

// SQLAuditSink appends to the event_log table. Consumers (sync, review
// tooling) tail the log by offset.
type SQLAuditSink struct{ db *sql.DB }

func NewSQLAuditSink(db *sql.DB) *SQLAuditSink { return &SQLAuditSink{db: db} }

func (s *SQLAuditSink) Append(ctx context.Context, e AuditEvent) error {
	data := e.DataJSON
	if data == "" {
		data = "{}"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_log (school_id, actor, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.SchoolID, e.Actor, e.Type, e.Key, data, time.Now().Unix())
	return err
}
