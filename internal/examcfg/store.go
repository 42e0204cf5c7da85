package examcfg

import "context"

type Store interface {
	// Create fails with Conflict if the schedule already has a config.
	Create(ctx context.Context, c Config) (Config, error)
	Get(ctx context.Context, schoolID, id string) (Config, error)
	Update(ctx context.Context, c Config) error
	// Delete fails with Conflict while any attempt exists for the config.
	Delete(ctx context.Context, schoolID, id string) error

	// AddQuestions inserts the items in one transaction, silently skipping
	// question ids already present and auto-assigning order_index for items
	// that omit one, continuing from the current maximum.
	AddQuestions(ctx context.Context, schoolID, configID string, items []AddQuestion) ([]ConfigQuestion, error)
	ListQuestions(ctx context.Context, schoolID, configID string) ([]ConfigQuestion, error)
}
