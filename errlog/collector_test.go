package errlog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/graphload/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []core.ErrorRecord
	fail bool
}

func (s *recordingSink) Append(rec core.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.got = append(s.got, rec)
	return nil
}

// blockingSink parks its first Append until release is closed.
type blockingSink struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSink) Append(core.ErrorRecord) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return nil
}

func errRecord(entity string, values ...string) core.ErrorRecord {
	return core.ErrorRecord{Entity: entity, Values: values, Cause: "could not insert"}
}

func TestCollector_ConcurrentAdd(t *testing.T) {
	c := NewCollector()

	const writers, perWriter = 16, 100
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.Add(errRecord(fmt.Sprintf("E%d", w), fmt.Sprint(i)))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, c.Len())
	assert.Len(t, c.Records(), writers*perWriter)
}

func TestCollector_SlowSinkDoesNotBlockReaders(t *testing.T) {
	sink := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
	c := NewCollector(WithSink(sink))

	added := make(chan struct{})
	go func() {
		defer close(added)
		c.Add(errRecord("A", "1"))
	}()
	<-sink.entered

	assert.Equal(t, 1, c.Len())
	c.Add(errRecord("B", "2"))
	assert.Len(t, c.Records(), 2)

	close(sink.release)
	<-added
	assert.Equal(t, 2, c.Len())
}

func TestCollector_InsertionOrder(t *testing.T) {
	c := NewCollector()
	c.Add(errRecord("A", "1"))
	c.Add(errRecord("B", "2"))
	c.Add(errRecord("C", "3"))

	var buf bytes.Buffer
	_, err := c.WriteTo(&buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `A (could not insert) : ["1"]`, lines[0])
	assert.Equal(t, `B (could not insert) : ["2"]`, lines[1])
	assert.Equal(t, `C (could not insert) : ["3"]`, lines[2])
}

func TestCollector_RecordsIsACopy(t *testing.T) {
	c := NewCollector()
	c.Add(errRecord("A"))

	records := c.Records()
	records[0].Entity = "changed"
	assert.Equal(t, "A", c.Records()[0].Entity)
}

func TestCollector_Sink(t *testing.T) {
	sink := &recordingSink{}
	c := NewCollector(WithSink(sink))
	c.Add(errRecord("A"))
	c.Add(errRecord("B"))

	assert.Len(t, sink.got, 2)
	assert.Equal(t, "B", sink.got[1].Entity)
}

func TestCollector_SinkFailureKeepsRecord(t *testing.T) {
	c := NewCollector(WithSink(&recordingSink{fail: true}), WithLogger(nil))
	c.Add(errRecord("A"))
	assert.Equal(t, 1, c.Len())
}

func TestCollector_Flush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "errors.log")

	c := NewCollector()
	c.Add(core.ErrorRecord{Entity: "Person", Source: "people.tsv:1", Values: []string{"p1", "Alice"}, Cause: "mutation was not applied"})
	require.NoError(t, c.Flush(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Person [people.tsv:1] (mutation was not applied) : [\"p1\",\"Alice\"]\n", string(data))
}

func TestCollector_FlushEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))

	require.NoError(t, NewCollector().Flush(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
