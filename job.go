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


// Package graphload loads tab-separated entity files into a property graph store.
package graphload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/graphload/config"
	"github.com/poiesic/graphload/core"
	"github.com/poiesic/graphload/errlog"
	"github.com/poiesic/graphload/errlog/badger"
	"github.com/poiesic/graphload/graphstore"
	"github.com/poiesic/graphload/graphstore/neo4j"
	"github.com/poiesic/graphload/loader"
	"github.com/poiesic/graphload/registry"
)

// Job runs one load described by config.Settings.
type Job struct {
	settings config.Settings
	client   graphstore.Client
	progress *loader.ProgressTracker
	logger   *slog.Logger
}

// JobOption configures a Job.
type JobOption func(*Job)

// WithClient uploads through client instead of connecting to Neo4j.
// The job does not close a client it did not open.
func WithClient(client graphstore.Client) JobOption {
	return func(j *Job) {
		j.client = client
	}
}

// WithProgress reports upload progress to w every interval records.
func WithProgress(w io.Writer, interval int) JobOption {
	return func(j *Job) {
		if w == nil {
			j.progress = nil
			return
		}
		j.progress = loader.NewProgressTracker(w, interval)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) JobOption {
	return func(j *Job) {
		if logger == nil {
			logger = slog.Default()
		}
		j.logger = logger
	}
}

// NewJob creates a job after checking its settings.
func NewJob(settings config.Settings, opts ...JobOption) (*Job, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	j := &Job{settings: settings, logger: slog.Default()}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Report summarizes a finished run.
type Report struct {
	RunID        core.ID
	Result       *loader.Result
	Errors       int
	ErrorLogPath string
	Elapsed      time.Duration
}

// Summary returns the operator-facing outcome of the run.
func (r *Report) Summary() string {
	if r.Errors == 0 {
		return "Graph uploaded!"
	}
	return fmt.Sprintf("Graph uploaded! But there were %d errors. Please check the log file %s.", r.Errors, r.ErrorLogPath)
}

// Prepare loads the graph declaration, builds the registry and checks every
// data directory. It performs no upload.
func (j *Job) Prepare() (*registry.Registry, error) {
	return Prepare(j.settings.GraphConfigPath)
}

// Prepare loads the graph declaration at path, builds its registry and
// checks every data directory.
func Prepare(path string) (*registry.Registry, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Build(cfg)
	if err != nil {
		return nil, err
	}
	if err := reg.CheckDataDirs(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Run uploads the graph.
//
// Structural errors are returned before anything is uploaded and no error log
// is written. Otherwise the error log is always written, and the returned
// error reports only task failures and log write failures; failed records are
// counted in the Report.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	logger := j.logger.With("config", j.settings.GraphConfigPath)

	reg, err := j.Prepare()
	if err != nil {
		return nil, err
	}
	logger.Info("graph config loaded", "nodes", len(reg.Nodes()), "edges", len(reg.Edges()))

	client := j.client
	if client == nil {
		nc, err := neo4j.NewClient(ctx, neo4j.Config{
			URI:      j.settings.URI,
			User:     j.settings.User,
			Password: j.settings.Password,
			Database: j.settings.Database,
		}, j.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to graph store: %w", err)
		}
		defer func() {
			if err := nc.Close(context.Background()); err != nil {
				logger.Error("error closing graph store client", "err", err)
			}
		}()
		client = nc
	}

	runID := core.IDFromContent(j.settings.GraphConfigPath + start.UTC().Format(time.RFC3339Nano))
	collectorOpts := []errlog.Option{errlog.WithLogger(j.logger)}
	if j.settings.JournalPath != "" {
		journal, err := badger.OpenJournal(j.settings.JournalPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open error journal: %w", err)
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Error("error closing error journal", "err", err)
			}
		}()
		run, err := journal.StartRun(runID, j.settings.GraphConfigPath)
		if err != nil {
			return nil, err
		}
		collectorOpts = append(collectorOpts, errlog.WithSink(run))
		logger.Info("journaling failed records", "journal", j.settings.JournalPath, "run", runID)
	}
	collector := errlog.NewCollector(collectorOpts...)

	loaderOpts := []loader.Option{
		loader.WithConcurrency(j.settings.Concurrency()),
		loader.WithAdmission(j.settings.Admission),
		loader.WithLogger(j.logger),
	}
	if j.progress != nil {
		loaderOpts = append(loaderOpts, loader.WithProgress(j.progress))
	}
	l, err := loader.NewLoader(reg, client, collector, loaderOpts...)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	result, runErr := l.Run(ctx)

	flushErr := collector.Flush(j.settings.ErrorLogPath)
	if flushErr != nil {
		logger.Error("error writing error log", "path", j.settings.ErrorLogPath, "err", flushErr)
	}

	report := &Report{
		RunID:        runID,
		Result:       result,
		Errors:       collector.Len(),
		ErrorLogPath: j.settings.ErrorLogPath,
		Elapsed:      time.Since(start),
	}
	logger.Info("run finished", "errors", report.Errors, "elapsed", report.Elapsed)

	return report, errors.Join(runErr, flushErr)
}
