package attempt

import "encoding/json"

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted" // terminal
)

type Attempt struct {
	ID          string   `json:"id"`
	SchoolID    string   `json:"school_id"`
	ConfigID    string   `json:"config_id"`
	StudentID   string   `json:"student_id"`
	AttemptNo   int      `json:"attempt_no"`
	Status      string   `json:"status"`
	StartedAt   int64    `json:"started_at"`
	SubmittedAt *int64   `json:"submitted_at,omitempty"`
	Score       *int     `json:"score,omitempty"`
	MaxScore    *int     `json:"max_score,omitempty"`
	Percentage  *float64 `json:"percentage,omitempty"`
	IPAddress   string   `json:"ip_address,omitempty"`
	UserAgent   string   `json:"user_agent,omitempty"`
}

type Answer struct {
	ID            string          `json:"id"`
	SchoolID      string          `json:"school_id"`
	AttemptID     string          `json:"attempt_id"`
	QuestionID    string          `json:"question_id"`
	Answer        json.RawMessage `json:"answer,omitempty"`
	IsCorrect     *bool           `json:"is_correct,omitempty"`
	AwardedPoints *int            `json:"awarded_points,omitempty"`
	AnsweredAt    int64           `json:"answered_at"`
}

// AnswerUpsert is one item of a bulk answer write.
type AnswerUpsert struct {
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

// ConfigItem is a config question joined with its bank question. Points is
// the effective value (points_override already applied).
type ConfigItem struct {
	QuestionID    string
	Type          string
	Prompt        string
	Options       json.RawMessage
	CorrectAnswer json.RawMessage
	Points        int
	OrderIndex    int
	Active        bool
}

// ExamQuestion is the sanitized question payload served to the student:
// no answer key, effective points only.
type ExamQuestion struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Prompt  string          `json:"prompt"`
	Options json.RawMessage `json:"options,omitempty"`
	Points  int             `json:"points"`
}

type ListOpts struct {
	ConfigID  string
	StudentID string
	Status    string
	Limit     int
	Offset    int
}
