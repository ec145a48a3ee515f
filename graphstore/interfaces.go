package graphstore

import (
	"context"

	"github.com/poiesic/graphload/mutation"
)

// Client executes mutations against a graph store.
// Implementations must be safe for concurrent use.
type Client interface {
	// Execute runs one operation and returns the store's result sequence.
	Execute(ctx context.Context, op mutation.Operation) ([]string, error)

	// Close releases connections held by the client.
	Close(ctx context.Context) error
}
