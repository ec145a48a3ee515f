// Package dryrun provides a graphstore.Client that renders operations instead of executing them.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/poiesic/graphload/graphstore"
	"github.com/poiesic/graphload/mutation"
)

// Syntax selects the rendering written for each operation.
type Syntax string

const (
	// SyntaxGremlin renders operations as Gremlin traversals. It is the default.
	SyntaxGremlin Syntax = "gremlin"
	// SyntaxCypher renders operations as parameterized Cypher statements.
	SyntaxCypher Syntax = "cypher"
)

// ParseSyntax parses a rendering syntax name.
func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(s) {
	case "", SyntaxGremlin:
		return SyntaxGremlin, nil
	case SyntaxCypher:
		return SyntaxCypher, nil
	default:
		return "", fmt.Errorf("unknown syntax %q: must be gremlin or cypher", s)
	}
}

// Result is what Execute reports for every rendered operation.
const Result = "dry-run"

// Client writes one line per operation to w.
type Client struct {
	mu     sync.Mutex
	w      io.Writer
	syntax Syntax
}

var _ graphstore.Client = (*Client)(nil)

// NewClient creates a dry-run client writing to w.
func NewClient(w io.Writer, syntax Syntax) *Client {
	if syntax == "" {
		syntax = SyntaxGremlin
	}
	return &Client{w: w, syntax: syntax}
}

// Execute renders op and reports it as applied.
func (c *Client) Execute(ctx context.Context, op mutation.Operation) ([]string, error) {
	line, err := c.render(op)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.w, line); err != nil {
		return nil, err
	}
	return []string{Result}, nil
}

func (c *Client) render(op mutation.Operation) (string, error) {
	if c.syntax == SyntaxCypher {
		stmt, err := mutation.Cypher(op)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s", stmt.Query, formatParams(stmt.Params)), nil
	}
	return mutation.Gremlin(op)
}

// Close is a no-op.
func (c *Client) Close(ctx context.Context) error {
	return nil
}

// formatParams renders params as JSON with sorted keys.
func formatParams(params map[string]any) string {
	bs, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprint(params)
	}
	return string(bs)
}
