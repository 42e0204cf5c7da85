package scoring

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestScore_SingleCorrectMCQ(t *testing.T) {
	items := []Item{{QuestionID: "q1", Points: 1, CorrectAnswer: raw(`{"selected":"B"}`)}}
	answers := map[string]json.RawMessage{"q1": raw(`{"selected":"B"}`)}

	res := Score(items, answers)
	if res.Score != 1 || res.MaxScore != 1 {
		t.Fatalf("score=%d max=%d, want 1/1", res.Score, res.MaxScore)
	}
	if res.Percentage != 100.0 {
		t.Fatalf("percentage=%v, want 100.0", res.Percentage)
	}
	qr := res.Questions[0]
	if qr.IsCorrect == nil || !*qr.IsCorrect || qr.AwardedPoints == nil || *qr.AwardedPoints != 1 {
		t.Fatalf("unexpected question result: %+v", qr)
	}
}

func TestScore_NoAnswersAtAll(t *testing.T) {
	items := []Item{
		{QuestionID: "q1", Points: 2, CorrectAnswer: raw(`"A"`)},
		{QuestionID: "q2", Points: 3, CorrectAnswer: raw(`"B"`)},
	}
	res := Score(items, nil)
	if res.Score != 0 {
		t.Fatalf("score=%d, want 0", res.Score)
	}
	if res.MaxScore != 5 {
		t.Fatalf("max=%d, want 5", res.MaxScore)
	}
	if res.Percentage != 0.0 {
		t.Fatalf("percentage=%v, want 0.0", res.Percentage)
	}
	for _, qr := range res.Questions {
		if qr.IsCorrect == nil || *qr.IsCorrect {
			t.Fatalf("missing answer must grade incorrect: %+v", qr)
		}
		if qr.AwardedPoints == nil || *qr.AwardedPoints != 0 {
			t.Fatalf("missing answer must award 0: %+v", qr)
		}
	}
}

func TestScore_UnscoreableQuestion(t *testing.T) {
	items := []Item{
		{QuestionID: "essay", Points: 5},                               // no answer key
		{QuestionID: "mcq", Points: 5, CorrectAnswer: raw(`"yes"`)},    //
	}
	answers := map[string]json.RawMessage{
		"essay": raw(`"long text"`),
		"mcq":   raw(`"yes"`),
	}
	res := Score(items, answers)
	if res.MaxScore != 10 {
		t.Fatalf("unscoreable points must still count toward max: got %d", res.MaxScore)
	}
	if res.Score != 5 {
		t.Fatalf("score=%d, want 5", res.Score)
	}
	essay := res.Questions[0]
	if essay.IsCorrect != nil || essay.AwardedPoints != nil {
		t.Fatalf("unscoreable question must stay ungraded: %+v", essay)
	}
}

func TestScore_EmptyConfig(t *testing.T) {
	res := Score(nil, nil)
	if res.Percentage != 0.0 || res.Score != 0 || res.MaxScore != 0 {
		t.Fatalf("empty config must score 0/0 at 0.0%%: %+v", res)
	}
}

func TestScore_MalformedAnswerIsIncorrect(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"truncated json", `{"selected":`},
		{"empty payload", ``},
		{"wrong shape", `{"chosen":"B"}`},
		{"wrong value", `{"selected":"A"}`},
	}
	items := []Item{{QuestionID: "q1", Points: 2, CorrectAnswer: raw(`{"selected":"B"}`)}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Score(items, map[string]json.RawMessage{"q1": raw(tc.answer)})
			qr := res.Questions[0]
			if qr.IsCorrect == nil || *qr.IsCorrect {
				t.Fatalf("answer %q must grade incorrect", tc.answer)
			}
			if res.Score != 0 {
				t.Fatalf("score=%d, want 0", res.Score)
			}
		})
	}
}

// Invariants from random point distributions: awarded points always sum to
// the score and effective points to the max, and the percentage follows from
// the two totals exactly.
func TestScore_SumInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(12)
		items := make([]Item, 0, n)
		answers := map[string]json.RawMessage{}
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			it := Item{QuestionID: id, Points: 1 + rng.Intn(10)}
			switch rng.Intn(4) {
			case 0: // unscoreable
			case 1: // correct
				it.CorrectAnswer = raw(`"k"`)
				answers[id] = raw(`"k"`)
			case 2: // wrong
				it.CorrectAnswer = raw(`"k"`)
				answers[id] = raw(`"x"`)
			case 3: // unanswered
				it.CorrectAnswer = raw(`"k"`)
			}
			items = append(items, it)
		}

		res := Score(items, answers)
		sumAwarded, sumPoints := 0, 0
		for i, qr := range res.Questions {
			sumPoints += items[i].Points
			if qr.AwardedPoints != nil {
				sumAwarded += *qr.AwardedPoints
			}
		}
		if sumAwarded != res.Score {
			t.Fatalf("trial %d: sum(awarded)=%d != score=%d", trial, sumAwarded, res.Score)
		}
		if sumPoints != res.MaxScore {
			t.Fatalf("trial %d: sum(points)=%d != max=%d", trial, sumPoints, res.MaxScore)
		}
		want := 0.0
		if res.MaxScore > 0 {
			want = 100.0 * float64(res.Score) / float64(res.MaxScore)
		}
		if res.Percentage != want {
			t.Fatalf("trial %d: percentage=%v, want %v", trial, res.Percentage, want)
		}
	}
}

func TestMark(t *testing.T) {
	tests := []struct {
		maxMarks   float64
		percentage float64
		want       float64
	}{
		{100, 100.0, 100},
		{100, 0.0, 0},
		{50, 100.0, 50},
		{75, 66.66666666666667, 50},
		{30, 33.33333333333333, 10},
		{20, 87.5, 18}, // 17.5 rounds half away from zero
	}
	for _, tc := range tests {
		if got := Mark(tc.maxMarks, tc.percentage); got != tc.want {
			t.Fatalf("Mark(%v, %v)=%v, want %v", tc.maxMarks, tc.percentage, got, tc.want)
		}
	}
}
