package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/graphload/core"
	"github.com/poiesic/graphload/mutation"
	"github.com/poiesic/graphload/records"
)

// TaskResult summarizes one upload task.
type TaskResult struct {
	Entity   string
	Kind     core.EntityKind
	Records  int
	Failed   int
	Started  time.Time
	Finished time.Time
	Err      error
}

// task uploads every record of one entity type.
type task struct {
	entity *core.EntityDefinition
	kind   core.EntityKind
	build  func(core.Record) (mutation.Operation, error)
}

func (l *Loader) nodeTask(node *core.NodeDefinition) task {
	return task{
		entity: &node.EntityDefinition,
		kind:   core.EntityKindNode,
		build: func(record core.Record) (mutation.Operation, error) {
			return l.builder.Vertex(node, record)
		},
	}
}

func (l *Loader) edgeTask(edge *core.EdgeDefinition) task {
	return task{
		entity: &edge.EntityDefinition,
		kind:   core.EntityKindEdge,
		build: func(record core.Record) (mutation.Operation, error) {
			return l.builder.Edge(edge, record)
		},
	}
}

// run executes the task, converting a panic into a task error.
func (l *Loader) run(ctx context.Context, t task) (res TaskResult) {
	res = TaskResult{Entity: t.entity.Name, Kind: t.kind, Started: time.Now()}
	logger := l.logger.With("entity", t.entity.Name, "phase", t.kind.String())

	defer func() {
		if r := recover(); r != nil {
			res.Err = &TaskError{Entity: t.entity.Name, Kind: t.kind, Err: fmt.Errorf("%w: %v", ErrTaskPanic, r)}
		}
		res.Finished = time.Now()
		if l.progress != nil {
			l.progress.TaskDone()
		}
		if res.Err != nil {
			logger.Error("upload task failed", "records", res.Records, "failed", res.Failed, "err", res.Err)
			return
		}
		logger.Info("upload task finished",
			"records", res.Records,
			"failed", res.Failed,
			"elapsed", res.Finished.Sub(res.Started))
	}()

	logger.Debug("upload task started", "path", t.entity.PathToData)

	for record, err := range records.Read(t.entity) {
		if err != nil && !errors.Is(err, records.ErrLineTooLong) {
			res.Err = &TaskError{Entity: t.entity.Name, Kind: t.kind, Err: err}
			return
		}
		if err := ctx.Err(); err != nil {
			res.Err = &TaskError{Entity: t.entity.Name, Kind: t.kind, Err: err}
			return
		}

		res.Records++
		uploadErr := err
		if uploadErr == nil {
			uploadErr = l.upload(ctx, t, record)
		}
		if uploadErr != nil {
			res.Failed++
			logger.Debug("record failed", "source", record.Source(), "err", uploadErr)
			l.collector.Add(core.NewErrorRecord(record, uploadErr))
		}
		if l.progress != nil {
			l.progress.RecordDone(uploadErr != nil)
		}
	}
	return
}

// upload builds and executes the mutation for one record.
// Any error it returns is a record failure.
func (l *Loader) upload(ctx context.Context, t task, record core.Record) error {
	op, err := t.build(record)
	if err != nil {
		return err
	}

	results, err := l.client.Execute(ctx, op)
	if err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}
	if !mutation.Succeeded(results) {
		return mutation.ErrNotApplied
	}
	return nil
}

func taskLogAttrs(tasks []task) []any {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.entity.Name
	}
	return []any{slog.Int("tasks", len(tasks)), slog.Any("entities", names)}
}
