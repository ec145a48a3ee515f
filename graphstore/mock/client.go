package mock

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/graphload/graphstore"
	"github.com/poiesic/graphload/mutation"
)

// Call is one recorded Execute call.
type Call struct {
	Op       mutation.Operation
	Started  time.Time
	Finished time.Time
}

// Client is a test double for graphstore.Client.
type Client struct {
	// ExecuteFunc is called by Execute if set.
	// If nil, every operation succeeds with a single result.
	ExecuteFunc func(ctx context.Context, op mutation.Operation) ([]string, error)

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ graphstore.Client = (*Client)(nil)

// NewClient creates a mock client where every operation succeeds.
func NewClient() *Client {
	return &Client{}
}

// WithExecuteFunc sets custom Execute behavior.
func (c *Client) WithExecuteFunc(fn func(ctx context.Context, op mutation.Operation) ([]string, error)) *Client {
	c.ExecuteFunc = fn
	return c
}

// Execute records the call and delegates to ExecuteFunc.
func (c *Client) Execute(ctx context.Context, op mutation.Operation) ([]string, error) {
	started := time.Now()

	var res []string
	var err error
	if c.ExecuteFunc != nil {
		res, err = c.ExecuteFunc(ctx, op)
	} else {
		res = []string{"ok"}
	}

	c.mu.Lock()
	c.calls = append(c.calls, Call{Op: op, Started: started, Finished: time.Now()})
	c.mu.Unlock()

	return res, err
}

// Close marks the client closed.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Calls returns a copy of the recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns the number of Execute calls.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
