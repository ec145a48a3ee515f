// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package neo4j

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/graphload/graphstore"
	"github.com/poiesic/graphload/mutation"
)

const (
	defaultUser           = "neo4j"
	defaultMaxPoolSize    = 50
	defaultConnectTimeout = 10 * time.Second
)

// Config holds connection settings for a Neo4j store.
type Config struct {
	URI            string
	User           string
	Password       string
	Database       string
	MaxPoolSize    int
	ConnectTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.User == "" {
		out.User = defaultUser
	}
	if out.MaxPoolSize <= 0 {
		out.MaxPoolSize = defaultMaxPoolSize
	}
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = defaultConnectTimeout
	}
	return out
}

// Client executes operations as auto-commit Cypher statements.
// Auto-commit statements are not retried by the driver.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

var _ graphstore.Client = (*Client)(nil)

// NewClient connects to the store and verifies connectivity.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j: uri required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.ConnectTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Client{
		driver:   driver,
		database: cfg.Database,
		logger:   logger.With("client", "neo4j"),
	}, nil
}

// Execute renders op as Cypher and runs it in its own session.
// The result sequence holds the element id of every created vertex or edge.
func (c *Client) Execute(ctx context.Context, op mutation.Operation) ([]string, error) {
	stmt, err := mutation.Cypher(op)
	if err != nil {
		return nil, err
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, stmt.Query, stmt.Params)
	if err != nil {
		return nil, fmt.Errorf("neo4j: run: %w", err)
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("neo4j: collect: %w", err)
	}

	return resultStrings(records), nil
}

// Close closes the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

func resultStrings(records []*neo4j.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		v, ok := rec.Get("id")
		if !ok || v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}
