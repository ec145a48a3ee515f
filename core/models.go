package core

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier derived from content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID as fixed-width hex.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// ParseID parses the hex form produced by ID.String.
func ParseID(s string) (ID, error) {
	var v uint64
	if _, err := fmt.Sscanf(s, "%x", &v); err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(v), nil
}

// EntityKind distinguishes vertex types from edge types.
type EntityKind int

const (
	// EntityKindNode is a vertex type.
	EntityKindNode EntityKind = iota + 1
	// EntityKindEdge is an edge type.
	EntityKindEdge
)

func (k EntityKind) String() string {
	switch k {
	case EntityKindNode:
		return "node"
	case EntityKindEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// EntityDefinition is the shape shared by node and edge types.
// Attribute i names column i of every data row.
type EntityDefinition struct {
	Name       string   `json:"name" yaml:"name"`
	PathToData string   `json:"pathToData" yaml:"pathToData"`
	Attributes []string `json:"attributes" yaml:"attributes"`
}

// AttributeIndex returns the column holding the named attribute, or -1.
func (e *EntityDefinition) AttributeIndex(name string) int {
	for i, attr := range e.Attributes {
		if attr == name {
			return i
		}
	}
	return -1
}

// NodeDefinition declares a vertex type.
type NodeDefinition struct {
	EntityDefinition `yaml:",inline"`

	// NodeIdAttribute addresses a vertex of this type when an edge connects to it.
	NodeIdAttribute string `json:"nodeIdAttribute,omitempty" yaml:"nodeIdAttribute"`
}

// EdgeDefinition declares a relationship between two node types.
type EdgeDefinition struct {
	EntityDefinition `yaml:",inline"`

	SourceNode      string `json:"sourceNode" yaml:"sourceNode"`
	DestinationNode string `json:"destinationNode" yaml:"destinationNode"`

	// SourceIdAttribute and DestinationIdAttribute optionally name the edge
	// columns holding the endpoint keys.
	SourceIdAttribute      string `json:"sourceIdAttribute,omitempty" yaml:"sourceIdAttribute,omitempty"`
	DestinationIdAttribute string `json:"destinationIdAttribute,omitempty" yaml:"destinationIdAttribute,omitempty"`
}

// Label is the edge label written to the store: source type name followed by
// destination type name.
func (e *EdgeDefinition) Label() string {
	return e.SourceNode + e.DestinationNode
}

// GraphConfig is the full set of declared entity types for one run.
type GraphConfig struct {
	Nodes []*NodeDefinition `json:"nodes" yaml:"nodes"`
	Edges []*EdgeDefinition `json:"edges" yaml:"edges"`
}

// Record is one parsed data row.
type Record struct {
	Entity string
	File   string
	Line   int
	Values []string
}

// Source reports where the record came from as "file:line".
func (r Record) Source() string {
	return fmt.Sprintf("%s:%d", r.File, r.Line)
}

// ErrorRecord describes one row that could not be written to the store.
type ErrorRecord struct {
	Entity     string
	Source     string
	Values     []string
	Cause      string
	RecordedAt time.Time
}

// NewErrorRecord builds an ErrorRecord for a failed record.
func NewErrorRecord(record Record, cause error) ErrorRecord {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	values := make([]string, len(record.Values))
	copy(values, record.Values)
	return ErrorRecord{
		Entity:     record.Entity,
		Source:     record.Source(),
		Values:     values,
		Cause:      msg,
		RecordedAt: time.Now().UTC(),
	}
}

// SerializedValues returns the raw values as a JSON array.
func (e ErrorRecord) SerializedValues() string {
	values := e.Values
	if values == nil {
		values = []string{}
	}
	bs, err := json.Marshal(values)
	if err != nil {
		return fmt.Sprintf("%q", values)
	}
	return string(bs)
}

// String formats the record as one error log line.
func (e ErrorRecord) String() string {
	if e.Source == "" {
		return fmt.Sprintf("%s (%s) : %s", e.Entity, e.Cause, e.SerializedValues())
	}
	return fmt.Sprintf("%s [%s] (%s) : %s", e.Entity, e.Source, e.Cause, e.SerializedValues())
}
