package attempt

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/engine"
	"github.com/edusphere/exam-engine/internal/examcfg"
	"github.com/edusphere/exam-engine/internal/school"
)

// Service is the attempt state machine. It owns eligibility (publication,
// time window, student binding, enrollment, attempt limit), question-list
// assembly with deterministic shuffling, answer upserts, and the submit
// transition, with post-commit audit events.
type Service struct {
	store      Store
	configs    examcfg.Store
	dir        school.Directory
	audit      school.AuditSink
	batchLimit int
	now        func() time.Time
}

func NewService(store Store, configs examcfg.Store, dir school.Directory, audit school.AuditSink, batchLimit int) *Service {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &Service{
		store:      store,
		configs:    configs,
		dir:        dir,
		audit:      audit,
		batchLimit: batchLimit,
		now:        time.Now,
	}
}

// Start validates eligibility, opens the attempt, and returns it together
// with the (possibly shuffled) question list.
func (s *Service) Start(ctx context.Context, id auth.Identity, configID, ip, userAgent string) (Attempt, []ExamQuestion, error) {
	cfg, err := s.configs.Get(ctx, id.SchoolID, configID)
	if err != nil {
		return Attempt{}, nil, err
	}
	sched, err := s.dir.ResolveSchedule(ctx, id.SchoolID, cfg.ScheduleID)
	if err != nil {
		return Attempt{}, nil, err
	}
	if !sched.Published {
		return Attempt{}, nil, engine.Forbidden("exam is not published")
	}
	now := s.now().Unix()
	if cfg.StartsAt != nil && now < *cfg.StartsAt {
		return Attempt{}, nil, engine.Forbidden("exam has not started yet")
	}
	if cfg.EndsAt != nil && now > *cfg.EndsAt {
		return Attempt{}, nil, engine.Forbidden("exam window has closed")
	}
	if id.StudentID == "" {
		return Attempt{}, nil, engine.Forbidden("no student record in scope")
	}
	if _, err := s.dir.StudentByID(ctx, id.SchoolID, id.StudentID); err != nil {
		return Attempt{}, nil, err
	}
	enrolled, err := s.dir.ActivelyEnrolled(ctx, id.SchoolID, id.StudentID, sched.ClassID)
	if err != nil {
		return Attempt{}, nil, err
	}
	if !enrolled {
		return Attempt{}, nil, engine.Forbidden("not enrolled in the scheduled class")
	}

	a, err := s.store.Create(ctx, Attempt{
		SchoolID:  id.SchoolID,
		ConfigID:  configID,
		StudentID: id.StudentID,
		StartedAt: now,
		IPAddress: ip,
		UserAgent: userAgent,
	}, cfg.AttemptLimit)
	if err != nil {
		return Attempt{}, nil, err
	}

	questions, err := s.assembleQuestions(ctx, a, cfg)
	if err != nil {
		return Attempt{}, nil, err
	}
	return a, questions, nil
}

// Questions re-serves the attempt's question list. The order is derived from
// the attempt id, so a mid-attempt refetch sees exactly the start-time order.
func (s *Service) Questions(ctx context.Context, id auth.Identity, attemptID string) ([]ExamQuestion, error) {
	a, err := s.ownedAttempt(ctx, id, attemptID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Get(ctx, id.SchoolID, a.ConfigID)
	if err != nil {
		return nil, err
	}
	return s.assembleQuestions(ctx, a, cfg)
}

func (s *Service) assembleQuestions(ctx context.Context, a Attempt, cfg examcfg.Config) ([]ExamQuestion, error) {
	items, err := s.store.ConfigItems(ctx, a.SchoolID, a.ConfigID)
	if err != nil {
		return nil, err
	}
	out := make([]ExamQuestion, 0, len(items))
	for _, it := range items {
		if !it.Active {
			continue
		}
		options := it.Options
		if cfg.ShuffleOptions {
			options = shuffleOptions(a.ID, it.QuestionID, options)
		}
		out = append(out, ExamQuestion{
			ID:      it.QuestionID,
			Type:    it.Type,
			Prompt:  it.Prompt,
			Options: options,
			Points:  it.Points,
		})
	}
	if cfg.ShuffleQuestions {
		shuffleQuestions(a.ID, out)
	}
	return out, nil
}

// SaveAnswers bulk-upserts answers for an in-progress attempt the caller
// owns. Each question must belong to the attempt's config.
func (s *Service) SaveAnswers(ctx context.Context, id auth.Identity, attemptID string, items []AnswerUpsert) error {
	if len(items) == 0 {
		return engine.BadRequest("no answers in batch")
	}
	if len(items) > s.batchLimit {
		return engine.BadRequest("batch exceeds %d items", s.batchLimit)
	}
	a, err := s.ownedAttempt(ctx, id, attemptID)
	if err != nil {
		return err
	}
	if a.Status != StatusInProgress {
		return engine.Forbidden("attempt %s is not in progress", attemptID)
	}

	cfgItems, err := s.store.ConfigItems(ctx, id.SchoolID, a.ConfigID)
	if err != nil {
		return err
	}
	inConfig := make(map[string]bool, len(cfgItems))
	for _, it := range cfgItems {
		inConfig[it.QuestionID] = true
	}
	for _, it := range items {
		if !inConfig[it.QuestionID] {
			return engine.Forbidden("question %s is not part of this exam", it.QuestionID)
		}
	}
	return s.store.UpsertAnswers(ctx, id.SchoolID, attemptID, s.now().Unix(), items)
}

// Submit runs the scoring transaction and flips the attempt to its terminal
// state. Past ends_at the submission is rejected even though the attempt is
// still in_progress.
func (s *Service) Submit(ctx context.Context, id auth.Identity, attemptID string) (Attempt, error) {
	a, err := s.ownedAttempt(ctx, id, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status != StatusInProgress {
		return Attempt{}, engine.Forbidden("attempt %s is not in progress", attemptID)
	}
	cfg, err := s.configs.Get(ctx, id.SchoolID, a.ConfigID)
	if err != nil {
		return Attempt{}, err
	}
	now := s.now().Unix()
	if cfg.EndsAt != nil && now > *cfg.EndsAt {
		return Attempt{}, engine.Forbidden("exam window has closed")
	}
	sched, err := s.dir.ResolveSchedule(ctx, id.SchoolID, cfg.ScheduleID)
	if err != nil {
		return Attempt{}, err
	}

	submitted, res, err := s.store.Submit(ctx, id.SchoolID, attemptID, now, sched)
	if err != nil {
		return Attempt{}, err
	}

	// Post-commit hook: audit failure must not undo committed effects.
	data, _ := json.Marshal(map[string]any{
		"config_id":  submitted.ConfigID,
		"student_id": submitted.StudentID,
		"attempt_no": submitted.AttemptNo,
		"score":      res.Score,
		"max_score":  res.MaxScore,
		"percentage": res.Percentage,
	})
	if err := s.audit.Append(ctx, school.AuditEvent{
		SchoolID: id.SchoolID,
		Actor:    id.Subject,
		Type:     "attempt.submitted",
		Key:      submitted.ID,
		DataJSON: string(data),
	}); err != nil {
		log.Printf("audit append failed for attempt %s: %v", submitted.ID, err)
	}
	return submitted, nil
}

// Get serves staff read-back and the owner's own view.
func (s *Service) Get(ctx context.Context, id auth.Identity, attemptID string, viewAll bool) (Attempt, error) {
	if viewAll {
		return s.store.Get(ctx, id.SchoolID, attemptID)
	}
	return s.ownedAttempt(ctx, id, attemptID)
}

func (s *Service) List(ctx context.Context, schoolID string, opts ListOpts) ([]Attempt, error) {
	return s.store.List(ctx, schoolID, opts)
}

func (s *Service) Answers(ctx context.Context, id auth.Identity, attemptID string, viewAll bool) ([]Answer, error) {
	if _, err := s.Get(ctx, id, attemptID, viewAll); err != nil {
		return nil, err
	}
	return s.store.Answers(ctx, id.SchoolID, attemptID)
}

// ownedAttempt loads the attempt and verifies the caller is its student.
func (s *Service) ownedAttempt(ctx context.Context, id auth.Identity, attemptID string) (Attempt, error) {
	a, err := s.store.Get(ctx, id.SchoolID, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if id.StudentID == "" || a.StudentID != id.StudentID {
		return Attempt{}, engine.Forbidden("attempt belongs to another student")
	}
	return a, nil
}
