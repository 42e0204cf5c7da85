package examcfg

// Config binds one exam schedule to its online-exam ruleset. Exactly one
// config may exist per schedule.
type Config struct {
	ID                string  `json:"id"`
	SchoolID          string  `json:"school_id"`
	ScheduleID        string  `json:"schedule_id"`
	DurationMinutes   int     `json:"duration_minutes"`
	ShuffleQuestions  bool    `json:"shuffle_questions"`
	ShuffleOptions    bool    `json:"shuffle_options"`
	AllowBacktrack    bool    `json:"allow_backtrack"`
	ProctoringEnabled bool    `json:"proctoring_enabled"`
	AttemptLimit      int     `json:"attempt_limit"`
	StartsAt          *int64  `json:"starts_at,omitempty"` // unix seconds
	EndsAt            *int64  `json:"ends_at,omitempty"`
	Instructions      *string `json:"instructions,omitempty"`
}

// ConfigQuestion is one ordered, possibly re-pointed question inside a config.
type ConfigQuestion struct {
	ID             string `json:"id"`
	SchoolID       string `json:"school_id"`
	ConfigID       string `json:"config_id"`
	QuestionID     string `json:"question_id"`
	OrderIndex     int    `json:"order_index"`
	PointsOverride *int   `json:"points_override,omitempty"`
}

// Patch carries a partial update; nil means "leave unchanged". The merged
// next-state is validated, so a patch can never produce starts_at > ends_at.
type Patch struct {
	DurationMinutes   *int    `json:"duration_minutes,omitempty"`
	ShuffleQuestions  *bool   `json:"shuffle_questions,omitempty"`
	ShuffleOptions    *bool   `json:"shuffle_options,omitempty"`
	AllowBacktrack    *bool   `json:"allow_backtrack,omitempty"`
	ProctoringEnabled *bool   `json:"proctoring_enabled,omitempty"`
	AttemptLimit      *int    `json:"attempt_limit,omitempty"`
	StartsAt          *int64  `json:"starts_at,omitempty"`
	EndsAt            *int64  `json:"ends_at,omitempty"`
	Instructions      *string `json:"instructions,omitempty"`
}

// AddQuestion is one bulk-add item. A nil OrderIndex is auto-assigned past
// the config's current maximum.
type AddQuestion struct {
	QuestionID     string `json:"question_id"`
	OrderIndex     *int   `json:"order_index,omitempty"`
	PointsOverride *int   `json:"points_override,omitempty"`
}

func (c Config) merged(p Patch) Config {
	next := c
	if p.DurationMinutes != nil {
		next.DurationMinutes = *p.DurationMinutes
	}
	if p.ShuffleQuestions != nil {
		next.ShuffleQuestions = *p.ShuffleQuestions
	}
	if p.ShuffleOptions != nil {
		next.ShuffleOptions = *p.ShuffleOptions
	}
	if p.AllowBacktrack != nil {
		next.AllowBacktrack = *p.AllowBacktrack
	}
	if p.ProctoringEnabled != nil {
		next.ProctoringEnabled = *p.ProctoringEnabled
	}
	if p.AttemptLimit != nil {
		next.AttemptLimit = *p.AttemptLimit
	}
	if p.StartsAt != nil {
		next.StartsAt = p.StartsAt
	}
	if p.EndsAt != nil {
		next.EndsAt = p.EndsAt
	}
	if p.Instructions != nil {
		next.Instructions = p.Instructions
	}
	return next
}
