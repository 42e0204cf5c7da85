// Package scoring computes attempt scores as a pure function of the config's
// question set and the attempt's answers. It never touches storage.
package scoring

import (
	"encoding/json"
	"math"
)

// Item is one config question as the scorer sees it: the effective point
// value (points_override already applied) and the current answer key.
// A nil CorrectAnswer makes the item unscoreable: its points still count
// toward the maximum but can never be earned.
type Item struct {
	QuestionID    string
	Points        int
	CorrectAnswer json.RawMessage
}

// QuestionResult is the graded outcome for one item. IsCorrect and
// AwardedPoints stay nil for unscoreable items.
type QuestionResult struct {
	QuestionID    string
	IsCorrect     *bool
	AwardedPoints *int
}

type Result struct {
	Score      int
	MaxScore   int
	Percentage float64
	Questions  []QuestionResult
}

// Score grades every item. Missing or malformed answers for scoreable items
// grade as incorrect, zero points, so every item has a result row.
func Score(items []Item, answers map[string]json.RawMessage) Result {
	res := Result{Questions: make([]QuestionResult, 0, len(items))}
	for _, it := range items {
		res.MaxScore += it.Points

		qr := QuestionResult{QuestionID: it.QuestionID}
		if len(it.CorrectAnswer) > 0 {
			correct := Equal(answers[it.QuestionID], it.CorrectAnswer)
			awarded := 0
			if correct {
				awarded = it.Points
			}
			qr.IsCorrect = &correct
			qr.AwardedPoints = &awarded
			res.Score += awarded
		}
		res.Questions = append(res.Questions, qr)
	}
	if res.MaxScore > 0 {
		res.Percentage = 100.0 * float64(res.Score) / float64(res.MaxScore)
	}
	return res
}

// Mark converts a percentage into the gradebook mark for a schedule's
// configured maximum.
func Mark(maxMarks, percentage float64) float64 {
	return math.Round(maxMarks * percentage / 100.0)
}
