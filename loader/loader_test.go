package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/graphload/config"
	"github.com/poiesic/graphload/core"
	"github.com/poiesic/graphload/errlog"
	"github.com/poiesic/graphload/graphstore/mock"
	"github.com/poiesic/graphload/mutation"
	"github.com/poiesic/graphload/records"
	"github.com/poiesic/graphload/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeData creates <root>/<entity>/data.tsv holding lines and returns the directory.
func writeData(t *testing.T, root, entity string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(root, entity)
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.tsv"), []byte(content), 0644))
	return dir
}

func nodeDef(name, dir string, attrs ...string) *core.NodeDefinition {
	return &core.NodeDefinition{
		EntityDefinition: core.EntityDefinition{Name: name, PathToData: dir, Attributes: attrs},
		NodeIdAttribute:  attrs[0],
	}
}

func edgeDef(name, dir, src, dst string, attrs ...string) *core.EdgeDefinition {
	return &core.EdgeDefinition{
		EntityDefinition: core.EntityDefinition{Name: name, PathToData: dir, Attributes: attrs},
		SourceNode:       src,
		DestinationNode:  dst,
	}
}

// socialGraph declares Person and Company nodes and Knows and WorksAt edges.
func socialGraph(t *testing.T) *core.GraphConfig {
	root := t.TempDir()
	return &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice", "p2\tBob"), "id", "name"),
			nodeDef("Company", writeData(t, root, "Company", "c1\tAcme"), "cid", "title"),
		},
		Edges: []*core.EdgeDefinition{
			edgeDef("Knows", writeData(t, root, "Knows", "p1\tp2\t2020"), "Person", "Person", "fromId", "toId", "since"),
			edgeDef("WorksAt", writeData(t, root, "WorksAt", "p1\tc1\tengineer"), "Person", "Company", "id", "cid", "role"),
		},
	}
}

func newTestLoader(t *testing.T, cfg *core.GraphConfig, client *mock.Client, opts ...Option) (*Loader, *errlog.Collector) {
	t.Helper()
	reg, err := registry.Build(cfg)
	require.NoError(t, err)

	collector := errlog.NewCollector()
	l, err := NewLoader(reg, client, collector, opts...)
	require.NoError(t, err)
	t.Cleanup(l.Release)
	return l, collector
}

// sleepy returns an ExecuteFunc that sleeps d per call and tracks the
// maximum number of concurrent calls in maxInFlight.
func sleepy(d time.Duration, maxInFlight *int64) func(context.Context, mutation.Operation) ([]string, error) {
	var inFlight int64
	return func(ctx context.Context, op mutation.Operation) ([]string, error) {
		n := atomic.AddInt64(&inFlight, 1)
		defer atomic.AddInt64(&inFlight, -1)
		for {
			old := atomic.LoadInt64(maxInFlight)
			if n <= old || atomic.CompareAndSwapInt64(maxInFlight, old, n) {
				break
			}
		}
		time.Sleep(d)
		return []string{"ok"}, nil
	}
}

func TestNewLoader_RequiresDependencies(t *testing.T) {
	reg, err := registry.Build(&core.GraphConfig{})
	require.NoError(t, err)
	client := mock.NewClient()
	collector := errlog.NewCollector()

	_, err = NewLoader(nil, client, collector)
	assert.ErrorIs(t, err, ErrRegistryRequired)

	_, err = NewLoader(reg, nil, collector)
	assert.ErrorIs(t, err, ErrClientRequired)

	_, err = NewLoader(reg, client, nil)
	assert.ErrorIs(t, err, ErrCollectorRequired)

	_, err = NewLoader(reg, client, collector, WithAdmission("fifo"))
	assert.Error(t, err)
}

func TestNewLoader_Defaults(t *testing.T) {
	l, _ := newTestLoader(t, &core.GraphConfig{}, mock.NewClient(), WithConcurrency(0))
	assert.Equal(t, 1, l.Concurrency())
	assert.Equal(t, config.AdmissionBatch, l.admission)
}

func TestRun_RoundTrip(t *testing.T) {
	cfg := socialGraph(t)
	client := mock.NewClient()
	l, collector := newTestLoader(t, cfg, client, WithConcurrency(2))

	result, err := l.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(cfg.Nodes)+len(cfg.Edges), result.Completed())
	assert.Len(t, result.Tasks, 4)
	assert.Equal(t, 5, result.Records)
	assert.Zero(t, result.Failed)
	assert.Zero(t, collector.Len())
	assert.Equal(t, 5, client.CallCount())
}

func TestRun_EmptyGraph(t *testing.T) {
	client := mock.NewClient()
	l, collector := newTestLoader(t, &core.GraphConfig{}, client)

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Zero(t, collector.Len())
	assert.Zero(t, client.CallCount())
}

func TestRun_ShortRecordBecomesOneErrorRecord(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice", "p2", "p3\tCarol"), "id", "name"),
		},
	}
	client := mock.NewClient()
	l, collector := newTestLoader(t, cfg, client)

	result, err := l.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, client.CallCount(), "the rows around the short one are still uploaded")

	errs := collector.Records()
	require.Len(t, errs, 1)
	assert.Equal(t, "Person", errs[0].Entity)
	assert.Equal(t, []string{"p2"}, errs[0].Values)
	assert.Contains(t, errs[0].Cause, mutation.ErrColumnCountMismatch.Error())
	assert.True(t, strings.HasSuffix(errs[0].Source, "data.tsv:2"))
}

func TestRun_EmptyResultMarkerIsRecordFailure(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice"), "id", "name"),
		},
	}
	client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
		return []string{mutation.EmptyResultMarker}, nil
	})
	l, collector := newTestLoader(t, cfg, client)

	_, err := l.Run(context.Background())
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Op.Steps, 1)
	add, ok := calls[0].Op.Steps[0].(mutation.AddVertex)
	require.True(t, ok)
	assert.Equal(t, "Person", add.Label)
	assert.Equal(t, []mutation.Property{{Key: "id", Value: "p1"}, {Key: "name", Value: "Alice"}}, add.Properties)

	errs := collector.Records()
	require.Len(t, errs, 1)
	assert.Equal(t, "Person", errs[0].Entity)
	assert.Equal(t, `["p1","Alice"]`, errs[0].SerializedValues())
	assert.Equal(t, mutation.ErrNotApplied.Error(), errs[0].Cause)
}

func TestRun_StoreFailuresAreRecordFailures(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice", "p2\tBob", "p3\tCarol"), "id", "name"),
		},
	}
	client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
		id := op.Steps[0].(mutation.AddVertex).Properties[0].Value
		switch id {
		case "p1":
			return nil, errors.New("connection reset")
		case "p2":
			return []string{}, nil
		default:
			return []string{"4:abc:0"}, nil
		}
	})
	l, collector := newTestLoader(t, cfg, client)

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)

	errs := collector.Records()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Cause, "connection reset")
	assert.Equal(t, mutation.ErrNotApplied.Error(), errs[1].Cause)
}

func TestRun_EdgeToMissingVertexIsRecordFailure(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice"), "id", "name"),
		},
		Edges: []*core.EdgeDefinition{
			edgeDef("Knows", writeData(t, root, "Knows", "p1\tp9\t2020"), "Person", "Person", "fromId", "toId", "since"),
		},
	}
	client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
		if op.Kind == core.EntityKindEdge {
			return []string{mutation.EmptyResultMarker}, nil
		}
		return []string{"ok"}, nil
	})
	l, collector := newTestLoader(t, cfg, client)

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Completed())

	errs := collector.Records()
	require.Len(t, errs, 1)
	assert.Equal(t, "Knows", errs[0].Entity)
	assert.Equal(t, []string{"p1", "p9", "2020"}, errs[0].Values)
}

func TestRun_EdgePhaseStartsAfterNodePhase(t *testing.T) {
	for _, mode := range []config.Admission{config.AdmissionBatch, config.AdmissionStream} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := socialGraph(t)
			client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
				if op.Entity == "Company" {
					time.Sleep(30 * time.Millisecond)
				}
				return []string{"ok"}, nil
			})
			l, _ := newTestLoader(t, cfg, client, WithConcurrency(4), WithAdmission(mode))

			result, err := l.Run(context.Background())
			require.NoError(t, err)

			var lastNodeEnd, firstEdgeStart time.Time
			for _, call := range client.Calls() {
				switch call.Op.Kind {
				case core.EntityKindNode:
					if call.Finished.After(lastNodeEnd) {
						lastNodeEnd = call.Finished
					}
				case core.EntityKindEdge:
					if firstEdgeStart.IsZero() || call.Started.Before(firstEdgeStart) {
						firstEdgeStart = call.Started
					}
				}
			}
			require.False(t, firstEdgeStart.IsZero())
			assert.False(t, firstEdgeStart.Before(lastNodeEnd), "edge call started before a node call finished")

			for _, node := range result.Tasks[:2] {
				for _, edge := range result.Tasks[2:] {
					assert.Equal(t, core.EntityKindNode, node.Kind)
					assert.Equal(t, core.EntityKindEdge, edge.Kind)
					assert.False(t, edge.Started.Before(node.Finished))
				}
			}
		})
	}
}

func TestRun_UnsetConcurrencyRunsTasksSequentially(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{}
	for _, name := range []string{"A", "B", "C", "D"} {
		cfg.Nodes = append(cfg.Nodes, nodeDef(name, writeData(t, root, name, "1\tx"), "id", "v"))
	}

	var maxInFlight int64
	client := mock.NewClient().WithExecuteFunc(sleepy(5*time.Millisecond, &maxInFlight))
	l, _ := newTestLoader(t, cfg, client, WithConcurrency(config.ParseConcurrency("not-a-number")))

	result, err := l.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), maxInFlight)
	require.Len(t, result.Tasks, 4)
	for i := 1; i < len(result.Tasks); i++ {
		assert.False(t, result.Tasks[i].Started.Before(result.Tasks[i-1].Finished),
			"task %d overlapped its predecessor", i)
	}
}

func TestRun_ConcurrencyIsBounded(t *testing.T) {
	for _, mode := range []config.Admission{config.AdmissionBatch, config.AdmissionStream} {
		t.Run(string(mode), func(t *testing.T) {
			root := t.TempDir()
			cfg := &core.GraphConfig{}
			for _, name := range []string{"A", "B", "C", "D", "E"} {
				cfg.Nodes = append(cfg.Nodes, nodeDef(name, writeData(t, root, name, "1\tx", "2\ty"), "id", "v"))
			}

			var maxInFlight int64
			client := mock.NewClient().WithExecuteFunc(sleepy(10*time.Millisecond, &maxInFlight))
			l, _ := newTestLoader(t, cfg, client, WithConcurrency(2), WithAdmission(mode))

			result, err := l.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 5, result.Completed())
			assert.LessOrEqual(t, maxInFlight, int64(2))
		})
	}
}

func TestRun_BatchAdmissionDrainsEachBatch(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Slow", writeData(t, root, "Slow", "1\tx"), "id", "v"),
			nodeDef("Fast", writeData(t, root, "Fast", "1\tx"), "id", "v"),
			nodeDef("Next", writeData(t, root, "Next", "1\tx"), "id", "v"),
		},
	}
	client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
		if op.Entity == "Slow" {
			time.Sleep(100 * time.Millisecond)
		}
		return []string{"ok"}, nil
	})

	l, _ := newTestLoader(t, cfg, client, WithConcurrency(2), WithAdmission(config.AdmissionBatch))
	result, err := l.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Tasks, 3)
	assert.False(t, result.Tasks[2].Started.Before(result.Tasks[0].Finished),
		"third task started before the first batch drained")

	l, _ = newTestLoader(t, cfg, client, WithConcurrency(2), WithAdmission(config.AdmissionStream))
	result, err = l.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Tasks, 3)
	assert.True(t, result.Tasks[2].Started.Before(result.Tasks[0].Finished),
		"stream admission should fill the free slot")
}

func TestRun_UnreadableDataStopsRun(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Gone", filepath.Join(root, "missing"), "id", "v"),
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice"), "id", "name"),
		},
		Edges: []*core.EdgeDefinition{
			edgeDef("Knows", writeData(t, root, "Knows", "p1\tp1\t2020"), "Person", "Person", "fromId", "toId", "since"),
		},
	}
	client := mock.NewClient()
	l, _ := newTestLoader(t, cfg, client)

	result, err := l.Run(context.Background())
	require.Error(t, err)

	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, "Gone", taskErr.Entity)
	assert.Equal(t, core.EntityKindNode, taskErr.Kind)

	require.Len(t, result.Tasks, 1, "no task starts after a failed batch")
	assert.Zero(t, client.CallCount())
}

func TestRun_PanickingTaskFailsRun(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", "p1\tAlice"), "id", "name"),
		},
		Edges: []*core.EdgeDefinition{
			edgeDef("Knows", writeData(t, root, "Knows", "p1\tp1\t2020"), "Person", "Person", "fromId", "toId", "since"),
		},
	}
	client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
		panic("driver bug")
	})

	for _, mode := range []config.Admission{config.AdmissionBatch, config.AdmissionStream} {
		t.Run(string(mode), func(t *testing.T) {
			l, _ := newTestLoader(t, cfg, client, WithAdmission(mode))

			result, err := l.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTaskPanic)
			require.Len(t, result.Tasks, 1)
			assert.Equal(t, "Person", result.Tasks[0].Entity)
		})
	}
}

func TestRun_CanceledContextStopsTasks(t *testing.T) {
	cfg := socialGraph(t)
	client := mock.NewClient()
	l, _ := newTestLoader(t, cfg, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, client.CallCount())
}

func TestRun_ConcurrentTasksShareCollector(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{}
	names := []string{"A", "B", "C", "D", "E", "F"}
	for _, name := range names {
		lines := make([]string, 50)
		for i := range lines {
			lines[i] = "short"
		}
		cfg.Nodes = append(cfg.Nodes, nodeDef(name, writeData(t, root, name, lines...), "id", "v"))
	}

	client := mock.NewClient()
	l, collector := newTestLoader(t, cfg, client, WithConcurrency(3), WithAdmission(config.AdmissionStream))

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300, result.Failed)
	require.Equal(t, 300, collector.Len())

	seen := map[string]int{}
	for _, rec := range collector.Records() {
		seen[rec.Entity]++
	}
	for _, name := range names {
		assert.Equal(t, 50, seen[name])
	}
}

func TestRun_ReportsProgress(t *testing.T) {
	cfg := socialGraph(t)
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, 1)
	l, _ := newTestLoader(t, cfg, mock.NewClient(), WithProgress(tracker))

	_, err := l.Run(context.Background())
	require.NoError(t, err)

	tasks, recs, failed := tracker.Counts()
	assert.Equal(t, 4, tasks)
	assert.Equal(t, 5, recs)
	assert.Zero(t, failed)
	assert.Contains(t, buf.String(), "4/4 entity types")
}

func TestRun_OverLongLineIsRecordFailure(t *testing.T) {
	root := t.TempDir()
	cfg := &core.GraphConfig{
		Nodes: []*core.NodeDefinition{
			nodeDef("Person", writeData(t, root, "Person", strings.Repeat("x", records.MaxLineSize+1), "p1\tAlice"), "id", "name"),
		},
		Edges: []*core.EdgeDefinition{
			edgeDef("Knows", writeData(t, root, "Knows", "p1\tp1\t2020"), "Person", "Person", "fromId", "toId", "since"),
		},
	}
	client := mock.NewClient()
	l, collector := newTestLoader(t, cfg, client)

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Completed(), "edge phase still runs")
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 2, client.CallCount())

	errs := collector.Records()
	require.Len(t, errs, 1)
	assert.Equal(t, "Person", errs[0].Entity)
	assert.Empty(t, errs[0].Values)
	assert.Contains(t, errs[0].Cause, records.ErrLineTooLong.Error())
	assert.True(t, strings.HasSuffix(errs[0].Source, "data.tsv:1"))
}
