package attempt

import (
	"context"
	"encoding/json"

	"github.com/edusphere/exam-engine/internal/school"
	"github.com/edusphere/exam-engine/internal/scoring"
)

// Store persists attempts and answers. The race-sensitive operations
// (Create, UpsertAnswers, Submit) are transactional: Create serializes the
// count-then-insert sequence behind a unique (config, student, attempt_no)
// constraint, and UpsertAnswers/Submit both revalidate status inside the
// transaction so an answer can never land after scoring has read the set.
type Store interface {
	// Create numbers the attempt 1 + count(prior attempts) and fails with
	// Forbidden when that would exceed limit.
	Create(ctx context.Context, a Attempt, limit int) (Attempt, error)
	Get(ctx context.Context, schoolID, id string) (Attempt, error)
	List(ctx context.Context, schoolID string, opts ListOpts) ([]Attempt, error)

	// ConfigItems returns the config's questions joined with the bank,
	// ordered by order_index. A config question whose bank question cannot
	// be resolved in scope fails the whole load with NotFound.
	ConfigItems(ctx context.Context, schoolID, configID string) ([]ConfigItem, error)

	// UpsertAnswers overwrites answer/answered_at per (attempt, question),
	// inserting rows that do not exist yet. Fails with Forbidden unless the
	// attempt is in_progress at commit time.
	UpsertAnswers(ctx context.Context, schoolID, attemptID string, now int64, items []AnswerUpsert) error
	Answers(ctx context.Context, schoolID, attemptID string) ([]Answer, error)

	// Submit runs scoring and the terminal transition in one transaction:
	// grade every config question, synthesize missing answers, persist the
	// attempt's score fields, and write the gradebook mark. A crash leaves
	// the attempt fully in_progress or fully submitted, never in between.
	Submit(ctx context.Context, schoolID, attemptID string, now int64, sched school.Schedule) (Attempt, scoring.Result, error)
}

func answersByQuestion(answers []Answer) map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(answers))
	for _, a := range answers {
		m[a.QuestionID] = a.Answer
	}
	return m
}
