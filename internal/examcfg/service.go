package examcfg

import (
	"context"

	"github.com/edusphere/exam-engine/internal/bank"
	"github.com/edusphere/exam-engine/internal/engine"
	"github.com/edusphere/exam-engine/internal/school"
)

// Service layers scope validation and temporal-range rules over the store.
// Every operation that touches a schedule goes through the directory's
// schedule -> exam -> year -> scope resolution first.
type Service struct {
	store Store
	bank  bank.Store
	dir   school.Directory
}

func NewService(store Store, bankStore bank.Store, dir school.Directory) *Service {
	return &Service{store: store, bank: bankStore, dir: dir}
}

func (s *Service) Create(ctx context.Context, c Config) (Config, error) {
	if _, err := s.dir.ResolveSchedule(ctx, c.SchoolID, c.ScheduleID); err != nil {
		return Config{}, err
	}
	if err := validateWindow(c.StartsAt, c.EndsAt); err != nil {
		return Config{}, err
	}
	if c.AttemptLimit < 1 {
		return Config{}, engine.BadRequest("attempt_limit must be at least 1")
	}
	return s.store.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, schoolID, id string) (Config, error) {
	return s.store.Get(ctx, schoolID, id)
}

func (s *Service) Update(ctx context.Context, schoolID, id string, p Patch) (Config, error) {
	current, err := s.store.Get(ctx, schoolID, id)
	if err != nil {
		return Config{}, err
	}
	next := current.merged(p)
	if err := validateWindow(next.StartsAt, next.EndsAt); err != nil {
		return Config{}, err
	}
	if next.AttemptLimit < 1 {
		return Config{}, engine.BadRequest("attempt_limit must be at least 1")
	}
	if err := s.store.Update(ctx, next); err != nil {
		return Config{}, err
	}
	return next, nil
}

func (s *Service) Delete(ctx context.Context, schoolID, id string) error {
	if _, err := s.store.Get(ctx, schoolID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, schoolID, id)
}

// AddQuestions validates every referenced question before any write, then
// hands the batch to the store's transactional insert.
func (s *Service) AddQuestions(ctx context.Context, schoolID, configID string, items []AddQuestion) ([]ConfigQuestion, error) {
	if _, err := s.store.Get(ctx, schoolID, configID); err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, err := s.bank.GetQuestion(ctx, schoolID, it.QuestionID); err != nil {
			return nil, err
		}
		if it.PointsOverride != nil && *it.PointsOverride < 0 {
			return nil, engine.BadRequest("points_override must not be negative")
		}
	}
	return s.store.AddQuestions(ctx, schoolID, configID, items)
}

func (s *Service) ListQuestions(ctx context.Context, schoolID, configID string) ([]ConfigQuestion, error) {
	if _, err := s.store.Get(ctx, schoolID, configID); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(ctx, schoolID, configID)
}

func validateWindow(startsAt, endsAt *int64) error {
	if startsAt != nil && endsAt != nil && *endsAt < *startsAt {
		return engine.BadRequest("ends_at must not precede starts_at")
	}
	return nil
}
