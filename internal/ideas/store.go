package ideas

import "context"

// Store is the persistence contract the catalog depends on.
//
// Insert must check and write in a single engine operation: when an idea
// with the same Key is already stored it returns ErrConflict and leaves the
// store unchanged. Engines report connectivity failures wrapped with
// ErrUnavailable.
type Store interface {
	// Count returns the number of stored ideas.
	Count(ctx context.Context) (int, error)
	// Insert persists a new idea and returns it as stored.
	Insert(ctx context.Context, idea Idea) (Idea, error)
	// InsertMany persists ideas in order, skipping any whose Key is already
	// stored, and returns how many were written.
	InsertMany(ctx context.Context, ideas []Idea) (int, error)
	// ListByRecency returns all ideas, newest first. Ideas with equal
	// timestamps are returned latest insertion first.
	ListByRecency(ctx context.Context) ([]Idea, error)
	// SampleOne returns an idea chosen uniformly at random, or ErrEmpty.
	SampleOne(ctx context.Context) (Idea, error)
}
