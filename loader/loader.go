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


package loader

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/graphload/config"
	"github.com/poiesic/graphload/errlog"
	"github.com/poiesic/graphload/graphstore"
	"github.com/poiesic/graphload/mutation"
	"github.com/poiesic/graphload/registry"
)

// Loader runs the node phase and then the edge phase of a load.
type Loader struct {
	registry    *registry.Registry
	client      graphstore.Client
	collector   *errlog.Collector
	builder     *mutation.Builder
	pool        *ants.Pool
	concurrency int
	admission   config.Admission
	progress    *ProgressTracker
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithConcurrency sets the maximum number of upload tasks running at once.
// Values below 1 select config.DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(l *Loader) error {
		if n < 1 {
			n = config.DefaultConcurrency
		}
		l.concurrency = n
		return nil
	}
}

// WithAdmission sets how tasks are admitted into a phase.
// Default is config.AdmissionBatch.
func WithAdmission(mode config.Admission) Option {
	return func(l *Loader) error {
		parsed, err := config.ParseAdmission(string(mode))
		if err != nil {
			return err
		}
		l.admission = parsed
		return nil
	}
}

// WithProgress reports progress to tracker.
func WithProgress(tracker *ProgressTracker) Option {
	return func(l *Loader) error {
		l.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader for the entities of reg.
// Failed records are added to collector.
func NewLoader(reg *registry.Registry, client graphstore.Client, collector *errlog.Collector, opts ...Option) (*Loader, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}
	if collector == nil {
		return nil, ErrCollectorRequired
	}

	l := &Loader{
		registry:    reg,
		client:      client,
		collector:   collector,
		builder:     mutation.NewBuilder(reg),
		concurrency: config.DefaultConcurrency,
		admission:   config.AdmissionBatch,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "loader")

	pool, err := ants.NewPool(l.concurrency)
	if err != nil {
		return nil, err
	}
	l.pool = pool

	return l, nil
}

// Release releases the worker pool.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}

// Concurrency returns the maximum number of upload tasks running at once.
func (l *Loader) Concurrency() int {
	return l.concurrency
}

// Result summarizes a run.
type Result struct {
	// Tasks holds the results of every started task, node tasks first,
	// each phase in declaration order.
	Tasks   []TaskResult
	Records int
	Failed  int
}

// Completed returns the number of tasks that finished without a task error.
func (r *Result) Completed() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Err == nil {
			n++
		}
	}
	return n
}

func (r *Result) add(results []TaskResult) {
	for _, t := range results {
		r.Tasks = append(r.Tasks, t)
		r.Records += t.Records
		r.Failed += t.Failed
	}
}

// Run uploads every node type, waits for all of them, then uploads every edge type.
// Record failures do not fail the run. A failed task stops the run after its
// batch and the edge phase is skipped if any node task failed; the returned
// Result covers the tasks that ran.
func (l *Loader) Run(ctx context.Context) (*Result, error) {
	nodes := l.registry.Nodes()
	edges := l.registry.Edges()

	l.logger.Info("starting load",
		"nodes", len(nodes),
		"edges", len(edges),
		"concurrency", l.concurrency,
		"admission", string(l.admission))

	if l.progress != nil {
		l.progress.Start(len(nodes) + len(edges))
		defer l.progress.Finish()
	}

	result := &Result{}

	nodeTasks := make([]task, len(nodes))
	for i, node := range nodes {
		nodeTasks[i] = l.nodeTask(node)
	}
	nodeResults, err := l.runPhase(ctx, "node", nodeTasks)
	result.add(nodeResults)
	if err != nil {
		return result, err
	}

	edgeTasks := make([]task, len(edges))
	for i, edge := range edges {
		edgeTasks[i] = l.edgeTask(edge)
	}
	edgeResults, err := l.runPhase(ctx, "edge", edgeTasks)
	result.add(edgeResults)
	if err != nil {
		return result, err
	}

	l.logger.Info("load complete", "tasks", len(result.Tasks), "records", result.Records, "failed", result.Failed)
	return result, nil
}
