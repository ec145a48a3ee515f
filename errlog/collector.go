package errlog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/graphload/core"
)

// Sink receives each error record as it is collected.
type Sink interface {
	Append(rec core.ErrorRecord) error
}

// Collector is an append-only, concurrency-safe list of error records.
type Collector struct {
	mu      sync.Mutex
	records []core.ErrorRecord
	sink    Sink
	logger  *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithSink forwards every collected record to sink.
// Sink failures are logged and do not drop the record from the collector.
func WithSink(sink Sink) Option {
	return func(c *Collector) {
		c.sink = sink
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewCollector creates an empty collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add appends a record and then forwards it to the sink, if any.
// The sink is called without holding the collector lock, so it must be safe
// for concurrent use and may see records in a different order than Records.
func (c *Collector) Add(rec core.ErrorRecord) {
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()

	if c.sink == nil {
		return
	}
	if err := c.sink.Append(rec); err != nil {
		c.logger.Warn("error journaling failed record", "entity", rec.Entity, "err", err)
	}
}

// Len returns the number of collected records.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns a copy of the collected records in insertion order.
func (c *Collector) Records() []core.ErrorRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.ErrorRecord, len(c.records))
	copy(out, c.records)
	return out
}

// WriteTo writes one line per record to w.
func (c *Collector) WriteTo(w io.Writer) (int64, error) {
	return WriteLines(w, c.Records())
}

// Flush writes every record to the file at path, replacing it.
// The file is written even when there are no records.
func (c *Collector) Flush(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create error log directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}

	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return f.Close()
}

// WriteLines writes records to w in error log format.
func WriteLines(w io.Writer, records []core.ErrorRecord) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, rec := range records {
		n, err := fmt.Fprintln(bw, rec.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}
