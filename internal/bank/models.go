package bank

import "encoding/json"

// Question types the bank accepts. Options and answer payloads stay opaque
// JSON whose shape is a contract between the authoring UI and the scoring
// canonicalizer, not a fixed schema.
const (
	TypeMCQSingle = "mcq_single"
	TypeMCQMulti  = "mcq_multi"
	TypeTrueFalse = "true_false"
	TypeShortWord = "short_word"
	TypeNumeric   = "numeric"
)

// KnownType reports whether t is a supported question type.
func KnownType(t string) bool {
	switch t {
	case TypeMCQSingle, TypeMCQMulti, TypeTrueFalse, TypeShortWord, TypeNumeric:
		return true
	}
	return false
}

type Category struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
}

type Question struct {
	ID         string  `json:"id"`
	SchoolID   string  `json:"school_id"`
	CategoryID *string `json:"category_id,omitempty"`
	Subject    *string `json:"subject,omitempty"`
	Type       string  `json:"type"`
	Prompt     string  `json:"prompt"`

	// Options is the renderable choice payload; CorrectAnswer is never
	// serialized to students (the attempt layer strips it).
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`

	Points     int      `json:"points"`
	Difficulty *string  `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsActive   bool     `json:"is_active"`
}

type Filter struct {
	CategoryID string
	Subject    string
	Active     *bool
}
