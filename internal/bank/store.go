package bank

import "context"

// Store owns categories and reusable question definitions. All operations are
// scoped: a row in another school behaves exactly like a missing row.
type Store interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, schoolID, id, name string) (Category, error)
	// DeleteCategory fails with Conflict while any question references it.
	DeleteCategory(ctx context.Context, schoolID, id string) error

	CreateQuestion(ctx context.Context, q Question) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	// DeleteQuestion fails with Conflict while any config references it, so
	// scored answers stay reproducible.
	DeleteQuestion(ctx context.Context, schoolID, id string) error
	GetQuestion(ctx context.Context, schoolID, id string) (Question, error)
	ListQuestions(ctx context.Context, schoolID string, f Filter) ([]Question, error)
}
