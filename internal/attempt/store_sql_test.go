package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/edusphere/exam-engine/internal/bank"
	"github.com/edusphere/exam-engine/internal/db"
	"github.com/edusphere/exam-engine/internal/engine"
	"github.com/edusphere/exam-engine/internal/examcfg"
	"github.com/edusphere/exam-engine/internal/school"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func mustExec(t *testing.T, h *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := h.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec: %v\n%s", err, query)
	}
}

// setupExam seeds the school tables, one scoreable MCQ worth 1 point, and an
// exam config with attempt_limit 2. Returns the store, config id and
// question id.
func setupExam(t *testing.T) (*sql.DB, *SQLStore, string, string) {
	t.Helper()
	h := openTestDB(t)
	ctx := context.Background()

	mustExec(t, h, `INSERT INTO academic_years (id, school_id, name, is_current) VALUES ('year-1','school-1','2026',1)`)
	mustExec(t, h, `INSERT INTO classes (id, school_id, name) VALUES ('class-1','school-1','JSS1')`)
	mustExec(t, h, `INSERT INTO exams (id, school_id, academic_year_id, name, is_published) VALUES ('exam-1','school-1','year-1','First Term',1)`)
	mustExec(t, h, `INSERT INTO exam_schedules (id, school_id, exam_id, class_id, subject, max_marks) VALUES ('sched-1','school-1','exam-1','class-1','Math',100)`)
	mustExec(t, h, `INSERT INTO students (id, school_id, full_name) VALUES ('stu-1','school-1','Ada')`)

	q, err := bank.NewSQLStore(h).CreateQuestion(ctx, bank.Question{
		SchoolID:      "school-1",
		Type:          bank.TypeMCQSingle,
		Prompt:        "2+2?",
		Options:       json.RawMessage(`["3","4","5"]`),
		CorrectAnswer: json.RawMessage(`{"selected":"4"}`),
		Points:        1,
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}

	cfgStore := examcfg.NewSQLStore(h)
	cfg, err := cfgStore.Create(ctx, examcfg.Config{
		SchoolID: "school-1", ScheduleID: "sched-1",
		DurationMinutes: 60, AttemptLimit: 2, AllowBacktrack: true,
	})
	if err != nil {
		t.Fatalf("seed config: %v", err)
	}
	if _, err := cfgStore.AddQuestions(ctx, "school-1", cfg.ID, []examcfg.AddQuestion{{QuestionID: q.ID}}); err != nil {
		t.Fatalf("attach question: %v", err)
	}

	store := NewSQLStore(h, "sqlite", school.NewSQLGradebook())
	return h, store, cfg.ID, q.ID
}

func startAttempt(t *testing.T, store *SQLStore, configID string, limit int) Attempt {
	t.Helper()
	a, err := store.Create(context.Background(), Attempt{
		SchoolID:  "school-1",
		ConfigID:  configID,
		StudentID: "stu-1",
		StartedAt: 1_700_000_000,
	}, limit)
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	return a
}

func TestSQLCreate_NumbersAttemptsAndEnforcesLimit(t *testing.T) {
	_, store, cfgID, _ := setupExam(t)

	a1 := startAttempt(t, store, cfgID, 2)
	if a1.AttemptNo != 1 || a1.Status != StatusInProgress {
		t.Fatalf("first attempt: %+v", a1)
	}
	a2 := startAttempt(t, store, cfgID, 2)
	if a2.AttemptNo != 2 {
		t.Fatalf("attempt_no=%d, want 2", a2.AttemptNo)
	}

	_, err := store.Create(context.Background(), Attempt{
		SchoolID: "school-1", ConfigID: cfgID, StudentID: "stu-1", StartedAt: 1_700_000_000,
	}, 2)
	if engine.KindOf(err) != engine.KindForbidden {
		t.Fatalf("over-limit start: expected forbidden, got %v", err)
	}
}

func TestSQLUpsertAnswers_Idempotent(t *testing.T) {
	_, store, cfgID, qID := setupExam(t)
	ctx := context.Background()
	a := startAttempt(t, store, cfgID, 2)

	batch := []AnswerUpsert{{QuestionID: qID, Answer: json.RawMessage(`{"selected":"3"}`)}}
	if err := store.UpsertAnswers(ctx, "school-1", a.ID, 1_700_000_100, batch); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	batch[0].Answer = json.RawMessage(`{"selected":"4"}`)
	if err := store.UpsertAnswers(ctx, "school-1", a.ID, 1_700_000_200, batch); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	answers, err := store.Answers(ctx, "school-1", a.ID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected 1 answer row, got %d", len(answers))
	}
	if answers[0].AnsweredAt != 1_700_000_200 {
		t.Fatalf("answered_at not refreshed: %d", answers[0].AnsweredAt)
	}
	if string(answers[0].Answer) != `{"selected":"4"}` {
		t.Fatalf("answer not overwritten: %s", answers[0].Answer)
	}
}

func TestSQLSubmit_ScoresWritesMarkAndSealsAttempt(t *testing.T) {
	h, store, cfgID, qID := setupExam(t)
	ctx := context.Background()
	a := startAttempt(t, store, cfgID, 2)

	if err := store.UpsertAnswers(ctx, "school-1", a.ID, 1_700_000_100,
		[]AnswerUpsert{{QuestionID: qID, Answer: json.RawMessage(`{"selected":"4"}`)}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	sched := school.Schedule{ID: "sched-1", MaxMarks: 100}
	out, res, err := store.Submit(ctx, "school-1", a.ID, 1_700_000_300, sched)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Status != StatusSubmitted || out.SubmittedAt == nil || *out.SubmittedAt != 1_700_000_300 {
		t.Fatalf("attempt not sealed: %+v", out)
	}
	if res.Score != 1 || res.MaxScore != 1 || res.Percentage != 100 {
		t.Fatalf("score %d/%d at %v%%, want 1/1 at 100%%", res.Score, res.MaxScore, res.Percentage)
	}

	// Per-question grading landed on the answer row.
	answers, err := store.Answers(ctx, "school-1", a.ID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 1 || answers[0].IsCorrect == nil || !*answers[0].IsCorrect ||
		answers[0].AwardedPoints == nil || *answers[0].AwardedPoints != 1 {
		t.Fatalf("graded answer row: %+v", answers)
	}

	// The gradebook mark was written in the same transaction.
	var value float64
	var remark string
	if err := h.QueryRowContext(ctx,
		`SELECT value, remark FROM marks WHERE schedule_id='sched-1' AND student_id='stu-1'`,
	).Scan(&value, &remark); err != nil {
		t.Fatalf("marks row: %v", err)
	}
	if value != 100 || remark != school.MarkRemark {
		t.Fatalf("mark value=%v remark=%q", value, remark)
	}

	// Terminal: no more writes.
	err = store.UpsertAnswers(ctx, "school-1", a.ID, 1_700_000_400,
		[]AnswerUpsert{{QuestionID: qID, Answer: json.RawMessage(`{"selected":"5"}`)}})
	if engine.KindOf(err) != engine.KindForbidden {
		t.Fatalf("post-submit upsert: expected forbidden, got %v", err)
	}
	if _, _, err := store.Submit(ctx, "school-1", a.ID, 1_700_000_500, sched); engine.KindOf(err) != engine.KindForbidden {
		t.Fatalf("resubmit: expected forbidden, got %v", err)
	}
}

func TestSQLSubmit_UnansweredSynthesizedAsIncorrect(t *testing.T) {
	_, store, cfgID, _ := setupExam(t)
	ctx := context.Background()
	a := startAttempt(t, store, cfgID, 2)

	out, res, err := store.Submit(ctx, "school-1", a.ID, 1_700_000_300,
		school.Schedule{ID: "sched-1", MaxMarks: 100})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 0 || res.MaxScore != 1 || *out.Percentage != 0 {
		t.Fatalf("empty submission: %d/%d at %v%%", res.Score, res.MaxScore, *out.Percentage)
	}
	answers, err := store.Answers(ctx, "school-1", a.ID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 1 || answers[0].IsCorrect == nil || *answers[0].IsCorrect {
		t.Fatalf("synthesized answer row: %+v", answers)
	}
}

func TestSQLConfigItems_OutOfScopeQuestionFailsLoad(t *testing.T) {
	h, store, cfgID, _ := setupExam(t)
	ctx := context.Background()

	// A config row pointing at a question the scope cannot resolve: the
	// question exists but belongs to another school.
	mustExec(t, h, `INSERT INTO questions (id, school_id, qtype, prompt, points) VALUES ('q-foreign','school-2','mcq_single','?',1)`)
	mustExec(t, h, `INSERT INTO config_questions (id, school_id, config_id, question_id, order_index) VALUES ('cq-rogue','school-1',$1,'q-foreign',99)`, cfgID)

	_, err := store.ConfigItems(ctx, "school-1", cfgID)
	if engine.KindOf(err) != engine.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
