package ideas

import "context"

// System defines the public contract for idea catalog operations.
type System interface {
	Handler() *Handler

	// SeedDefaults inserts the given texts as non-submitted ideas when the
	// store is empty and returns how many were inserted.
	SeedDefaults(ctx context.Context, texts []string) (int, error)
	List(ctx context.Context) ([]Idea, error)
	Random(ctx context.Context) (*Idea, error)
	Submit(ctx context.Context, text string) (*Idea, error)
	Count(ctx context.Context) (int, error)
}
