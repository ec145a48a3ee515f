package loader

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker tracks and reports progress of a load.
// Progress is counted in finished upload tasks; records are reported alongside.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	tasks          int
	records        int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// reportInterval: report progress every N records, and whenever a task finishes
func NewProgressTracker(writer io.Writer, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		reportInterval: reportInterval,
	}
}

// Start begins tracking a load of total upload tasks.
func (p *ProgressTracker) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.total = total
	p.tasks = 0
	p.records = 0
	p.failed = 0
	p.lastReported = 0
}

// RecordDone counts one processed record.
func (p *ProgressTracker) RecordDone(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.records++
	if failed {
		p.failed++
	}

	if p.records-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.records
	}
}

// TaskDone counts one finished upload task.
func (p *ProgressTracker) TaskDone() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	if p.tasks < p.total {
		p.tasks++
	}
	p.report()
	p.lastReported = p.records
}

// Finish prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Counts returns the finished tasks, processed records and failed records so far.
func (p *ProgressTracker) Counts() (tasks, records, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks, p.records, p.failed
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startTime.IsZero() {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.records) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.tasks) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d entity types (%.1f%%) - %d records, %d failed - %.1f records/s",
		p.tasks, p.total, percentage, p.records, p.failed, rate)
}
