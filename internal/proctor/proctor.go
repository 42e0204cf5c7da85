// Package proctor is the append-only log of client-reported integrity events
// (focus loss, fullscreen exit, devtools, ...). Events attach to an attempt
// the caller owns and never influence attempt state or scoring.
package proctor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/engine"
)

type Event struct {
	ID        string          `json:"id"`
	SchoolID  string          `json:"school_id"`
	AttemptID string          `json:"attempt_id"`
	EventType string          `json:"event_type"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

type Store interface {
	Append(ctx context.Context, e Event) (Event, error)
}

// AttemptChecker is the slice of the attempt store the proctor log needs:
// enough to verify the attempt exists and who owns it.
type AttemptChecker interface {
	OwnerOf(ctx context.Context, schoolID, attemptID string) (studentID string, err error)
}

type Service struct {
	store    Store
	attempts AttemptChecker
	now      func() time.Time
}

func NewService(store Store, attempts AttemptChecker) *Service {
	return &Service{store: store, attempts: attempts, now: time.Now}
}

func (s *Service) Append(ctx context.Context, id auth.Identity, attemptID, eventType string, details json.RawMessage) (Event, error) {
	if eventType == "" {
		return Event{}, engine.BadRequest("event_type is required")
	}
	owner, err := s.attempts.OwnerOf(ctx, id.SchoolID, attemptID)
	if err != nil {
		return Event{}, err
	}
	if id.StudentID == "" || owner != id.StudentID {
		return Event{}, engine.Forbidden("attempt belongs to another student")
	}
	return s.store.Append(ctx, Event{
		SchoolID:  id.SchoolID,
		AttemptID: attemptID,
		EventType: eventType,
		Details:   details,
		CreatedAt: s.now().Unix(),
	})
}
