package mutation

import "github.com/poiesic/graphload/core"

// Property is one key/value pair set on a vertex or edge.
type Property struct {
	Key   string
	Value string
}

// Step is one part of an Operation. The set of steps is closed.
type Step interface {
	step()
}

// AddVertex creates a vertex with the given label and properties.
type AddVertex struct {
	Label      string
	Properties []Property
}

// MatchVertex locates existing vertices whose Attribute property equals Value.
// Label restricts the match to one node type.
type MatchVertex struct {
	Label     string
	Attribute string
	Value     string
}

// AddEdge creates an edge from the vertex located by the preceding MatchVertex.
type AddEdge struct {
	Label      string
	Properties []Property
}

// Connect attaches the edge created by the preceding AddEdge to the vertex located by To.
type Connect struct {
	To MatchVertex
}

func (AddVertex) step()   {}
func (MatchVertex) step() {}
func (AddEdge) step()     {}
func (Connect) step()     {}

// Operation is a single mutation against the graph store.
type Operation struct {
	Entity string
	Kind   core.EntityKind
	Steps  []Step
}
