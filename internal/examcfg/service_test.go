package examcfg

import (
	"context"
	"testing"

	"github.com/edusphere/exam-engine/internal/bank"
	"github.com/edusphere/exam-engine/internal/engine"
	"github.com/edusphere/exam-engine/internal/school"
)

type memStore struct {
	configs map[string]Config
	added   []AddQuestion
}

func (m *memStore) Create(_ context.Context, c Config) (Config, error) {
	for _, ex := range m.configs {
		if ex.ScheduleID == c.ScheduleID {
			return Config{}, engine.Conflict("schedule %s already has an exam config", c.ScheduleID)
		}
	}
	c.ID = "cfg-new"
	m.configs[c.ID] = c
	return c, nil
}

func (m *memStore) Get(_ context.Context, schoolID, id string) (Config, error) {
	c, ok := m.configs[id]
	if !ok || c.SchoolID != schoolID {
		return Config{}, engine.NotFound("exam config %s not found", id)
	}
	return c, nil
}

func (m *memStore) Update(_ context.Context, c Config) error {
	m.configs[c.ID] = c
	return nil
}

func (m *memStore) Delete(_ context.Context, _, id string) error {
	delete(m.configs, id)
	return nil
}

func (m *memStore) AddQuestions(_ context.Context, _, _ string, items []AddQuestion) ([]ConfigQuestion, error) {
	m.added = append(m.added, items...)
	out := make([]ConfigQuestion, len(items))
	for i, it := range items {
		out[i] = ConfigQuestion{QuestionID: it.QuestionID, OrderIndex: i + 1}
	}
	return out, nil
}

func (m *memStore) ListQuestions(_ context.Context, _, _ string) ([]ConfigQuestion, error) {
	return nil, nil
}

type memBank struct {
	questions map[string]bank.Question
}

func (b *memBank) CreateCategory(_ context.Context, c bank.Category) (bank.Category, error) {
	return c, nil
}
func (b *memBank) UpdateCategory(_ context.Context, _, _, _ string) (bank.Category, error) {
	return bank.Category{}, nil
}
func (b *memBank) DeleteCategory(_ context.Context, _, _ string) error { return nil }
func (b *memBank) CreateQuestion(_ context.Context, q bank.Question) (bank.Question, error) {
	return q, nil
}
func (b *memBank) UpdateQuestion(_ context.Context, q bank.Question) (bank.Question, error) {
	return q, nil
}
func (b *memBank) DeleteQuestion(_ context.Context, _, _ string) error { return nil }
func (b *memBank) GetQuestion(_ context.Context, schoolID, id string) (bank.Question, error) {
	q, ok := b.questions[id]
	if !ok || q.SchoolID != schoolID {
		return bank.Question{}, engine.NotFound("question %s not found", id)
	}
	return q, nil
}
func (b *memBank) ListQuestions(_ context.Context, _ string, _ bank.Filter) ([]bank.Question, error) {
	return nil, nil
}

type memDirectory struct {
	schedules map[string]bool // scheduleID -> resolvable
}

func (d *memDirectory) ResolveSchedule(_ context.Context, _, scheduleID string) (school.Schedule, error) {
	if !d.schedules[scheduleID] {
		return school.Schedule{}, engine.NotFound("exam schedule %s not found", scheduleID)
	}
	return school.Schedule{ID: scheduleID, Published: true}, nil
}
func (d *memDirectory) StudentByID(_ context.Context, _, studentID string) (school.Student, error) {
	return school.Student{ID: studentID}, nil
}
func (d *memDirectory) ActivelyEnrolled(_ context.Context, _, _, _ string) (bool, error) {
	return true, nil
}

func newTestService(existing ...Config) (*Service, *memStore) {
	store := &memStore{configs: map[string]Config{}}
	for _, c := range existing {
		store.configs[c.ID] = c
	}
	bankStore := &memBank{questions: map[string]bank.Question{
		"q1": {ID: "q1", SchoolID: "school-1", Type: "mcq_single", Points: 1},
	}}
	dir := &memDirectory{schedules: map[string]bool{"sched-1": true}}
	return NewService(store, bankStore, dir), store
}

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		kind engine.Kind
	}{
		{"unknown schedule", Config{SchoolID: "school-1", ScheduleID: "sched-missing", AttemptLimit: 1}, engine.KindNotFound},
		{"inverted window", Config{SchoolID: "school-1", ScheduleID: "sched-1", AttemptLimit: 1,
			StartsAt: i64(200), EndsAt: i64(100)}, engine.KindBadRequest},
		{"zero attempt limit", Config{SchoolID: "school-1", ScheduleID: "sched-1", AttemptLimit: 0}, engine.KindBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService()
			_, err := svc.Create(context.Background(), tc.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := engine.KindOf(err); got != tc.kind {
				t.Fatalf("kind %v, want %v (%v)", got, tc.kind, err)
			}
		})
	}
}

func TestCreate_SecondConfigForScheduleConflicts(t *testing.T) {
	svc, _ := newTestService(Config{ID: "cfg-1", SchoolID: "school-1", ScheduleID: "sched-1", AttemptLimit: 1})
	_, err := svc.Create(context.Background(), Config{SchoolID: "school-1", ScheduleID: "sched-1", AttemptLimit: 1})
	if engine.KindOf(err) != engine.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdate_ValidatesMergedWindow(t *testing.T) {
	base := Config{ID: "cfg-1", SchoolID: "school-1", ScheduleID: "sched-1",
		AttemptLimit: 1, StartsAt: i64(100), EndsAt: i64(200)}

	t.Run("patch making ends precede starts", func(t *testing.T) {
		svc, _ := newTestService(base)
		_, err := svc.Update(context.Background(), "school-1", "cfg-1", Patch{EndsAt: i64(50)})
		if engine.KindOf(err) != engine.KindBadRequest {
			t.Fatalf("expected bad request, got %v", err)
		}
	})

	t.Run("patch moving both bounds", func(t *testing.T) {
		svc, store := newTestService(base)
		got, err := svc.Update(context.Background(), "school-1", "cfg-1",
			Patch{StartsAt: i64(300), EndsAt: i64(400)})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if *got.StartsAt != 300 || *got.EndsAt != 400 {
			t.Fatalf("window not moved: %+v", got)
		}
		if persisted := store.configs["cfg-1"]; *persisted.EndsAt != 400 {
			t.Fatalf("update not persisted: %+v", persisted)
		}
	})

	t.Run("untouched fields survive", func(t *testing.T) {
		svc, _ := newTestService(base)
		got, err := svc.Update(context.Background(), "school-1", "cfg-1", Patch{AttemptLimit: iptr(3)})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.AttemptLimit != 3 || *got.StartsAt != 100 || *got.EndsAt != 200 {
			t.Fatalf("merge clobbered fields: %+v", got)
		}
	})
}

func TestUpdate_CrossSchoolIsNotFound(t *testing.T) {
	svc, _ := newTestService(Config{ID: "cfg-1", SchoolID: "school-1", ScheduleID: "sched-1", AttemptLimit: 1})
	_, err := svc.Update(context.Background(), "school-2", "cfg-1", Patch{AttemptLimit: iptr(2)})
	if engine.KindOf(err) != engine.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddQuestions_ValidatesEveryItemBeforeWriting(t *testing.T) {
	cfg := Config{ID: "cfg-1", SchoolID: "school-1", ScheduleID: "sched-1", AttemptLimit: 1}

	t.Run("question outside scope", func(t *testing.T) {
		svc, store := newTestService(cfg)
		_, err := svc.AddQuestions(context.Background(), "school-1", "cfg-1", []AddQuestion{
			{QuestionID: "q1"},
			{QuestionID: "q-foreign"},
		})
		if engine.KindOf(err) != engine.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
		if len(store.added) != 0 {
			t.Fatalf("store written despite validation failure: %+v", store.added)
		}
	})

	t.Run("negative points override", func(t *testing.T) {
		svc, _ := newTestService(cfg)
		neg := -1
		_, err := svc.AddQuestions(context.Background(), "school-1", "cfg-1", []AddQuestion{
			{QuestionID: "q1", PointsOverride: &neg},
		})
		if engine.KindOf(err) != engine.KindBadRequest {
			t.Fatalf("expected bad request, got %v", err)
		}
	})

	t.Run("valid batch lands", func(t *testing.T) {
		svc, store := newTestService(cfg)
		out, err := svc.AddQuestions(context.Background(), "school-1", "cfg-1", []AddQuestion{{QuestionID: "q1"}})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if len(out) != 1 || len(store.added) != 1 {
			t.Fatalf("batch not written: out=%+v added=%+v", out, store.added)
		}
	})
}
