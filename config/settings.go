package config

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultConcurrency is used when no usable concurrency is configured.
const DefaultConcurrency = 1

// Admission selects how upload tasks are admitted into a phase.
type Admission string

const (
	// AdmissionBatch starts tasks in batches of the concurrency limit and
	// drains each batch completely before starting the next.
	AdmissionBatch Admission = "batch"

	// AdmissionStream keeps up to the concurrency limit of tasks running,
	// starting the next task as soon as any slot frees up.
	AdmissionStream Admission = "stream"
)

// ParseAdmission parses an admission mode. The empty string selects AdmissionBatch.
func ParseAdmission(s string) (Admission, error) {
	switch Admission(strings.ToLower(strings.TrimSpace(s))) {
	case "", AdmissionBatch:
		return AdmissionBatch, nil
	case AdmissionStream:
		return AdmissionStream, nil
	default:
		return "", fmt.Errorf("invalid admission mode %q: must be one of batch, stream", s)
	}
}

// Settings holds the run-level settings of a load.
type Settings struct {
	// Store connection. Opaque to the loader.
	URI      string
	User     string
	Password string
	Database string

	// GraphConfigPath locates the graph declaration.
	GraphConfigPath string

	// ErrorLogPath receives one line per failed record when the run ends.
	ErrorLogPath string

	// MaxConcurrency is the raw configured value; see Concurrency.
	MaxConcurrency string

	Admission Admission

	// JournalPath optionally names a directory where failed records are
	// journaled as they happen.
	JournalPath string
}

// Concurrency returns the effective task concurrency.
func (s *Settings) Concurrency() int {
	return ParseConcurrency(s.MaxConcurrency)
}

// Validate checks that the settings needed to start a run are present.
func (s *Settings) Validate() error {
	if s.GraphConfigPath == "" {
		return fmt.Errorf("graph config path is required")
	}
	if s.ErrorLogPath == "" {
		return fmt.Errorf("error log path is required")
	}
	if _, err := ParseAdmission(string(s.Admission)); err != nil {
		return err
	}
	return nil
}

// ParseConcurrency converts a configured concurrency to a task limit.
// Absent, unparseable and non-positive values all yield DefaultConcurrency.
func ParseConcurrency(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultConcurrency
	}
	return n
}
