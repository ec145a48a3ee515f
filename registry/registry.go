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


package registry

import (
	"fmt"
	"os"

	"github.com/poiesic/graphload/core"
)

// EdgeKeys describes where an edge record carries its endpoint keys and how
// those keys address the endpoint vertices.
type EdgeKeys struct {
	// SourceColumn and DestinationColumn index the edge's own attributes.
	SourceColumn      int
	DestinationColumn int

	// SourceAttribute and DestinationAttribute are the primary-key attributes
	// of the source and destination node types.
	SourceAttribute      string
	DestinationAttribute string
}

// IsKeyColumn reports whether column i holds an endpoint key.
func (k EdgeKeys) IsKeyColumn(i int) bool {
	return i == k.SourceColumn || i == k.DestinationColumn
}

// Registry is a read-only index of node and edge definitions.
type Registry struct {
	nodes     map[string]*core.NodeDefinition
	edges     map[string]*core.EdgeDefinition
	edgeKeys  map[string]EdgeKeys
	nodeOrder []*core.NodeDefinition
	edgeOrder []*core.EdgeDefinition
}

// Build indexes cfg and eagerly resolves every edge endpoint.
//
// Build fails with a *core.DuplicateNameError when two entities of one kind
// share a name, a *core.UnknownNodeReferenceError when an edge names an
// undeclared node type, and a *core.InvalidKeyColumnError when an edge's
// endpoint key columns cannot be resolved.
func Build(cfg *core.GraphConfig) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("graph config is nil")
	}

	r := &Registry{
		nodes:     make(map[string]*core.NodeDefinition, len(cfg.Nodes)),
		edges:     make(map[string]*core.EdgeDefinition, len(cfg.Edges)),
		edgeKeys:  make(map[string]EdgeKeys, len(cfg.Edges)),
		nodeOrder: make([]*core.NodeDefinition, 0, len(cfg.Nodes)),
		edgeOrder: make([]*core.EdgeDefinition, 0, len(cfg.Edges)),
	}

	for _, node := range cfg.Nodes {
		if node == nil {
			return nil, fmt.Errorf("node definition is nil")
		}
		if _, ok := r.nodes[node.Name]; ok {
			return nil, &core.DuplicateNameError{Kind: core.EntityKindNode, Name: node.Name}
		}
		r.nodes[node.Name] = node
		r.nodeOrder = append(r.nodeOrder, node)
	}

	for _, edge := range cfg.Edges {
		if edge == nil {
			return nil, fmt.Errorf("edge definition is nil")
		}
		if _, ok := r.edges[edge.Name]; ok {
			return nil, &core.DuplicateNameError{Kind: core.EntityKindEdge, Name: edge.Name}
		}
		keys, err := r.resolveEdgeKeys(edge)
		if err != nil {
			return nil, err
		}
		r.edges[edge.Name] = edge
		r.edgeKeys[edge.Name] = keys
		r.edgeOrder = append(r.edgeOrder, edge)
	}

	return r, nil
}

// ResolvePrimaryKeyAttribute returns the primary-key attribute of a node type.
func (r *Registry) ResolvePrimaryKeyAttribute(nodeName string) (string, error) {
	node, ok := r.nodes[nodeName]
	if !ok {
		return "", &core.UnknownNodeReferenceError{Node: nodeName}
	}
	if node.NodeIdAttribute == "" {
		return "", fmt.Errorf("%s: %w", nodeName, core.ErrMissingNodeIdAttribute)
	}
	return node.NodeIdAttribute, nil
}

// resolveEdgeKeys decides which edge columns hold the endpoint keys.
//
// Explicit sourceIdAttribute/destinationIdAttribute win. Otherwise, when the
// endpoint primary keys have different names and the edge declares both, those
// columns are used; declaring only one of them is an error unless the other
// endpoint is set explicitly. Otherwise the first column is the source key and
// the second the destination key.
func (r *Registry) resolveEdgeKeys(edge *core.EdgeDefinition) (EdgeKeys, error) {
	srcAttr, err := r.endpointAttribute(edge, edge.SourceNode)
	if err != nil {
		return EdgeKeys{}, err
	}
	dstAttr, err := r.endpointAttribute(edge, edge.DestinationNode)
	if err != nil {
		return EdgeKeys{}, err
	}

	keys := EdgeKeys{
		SourceColumn:         0,
		DestinationColumn:    1,
		SourceAttribute:      srcAttr,
		DestinationAttribute: dstAttr,
	}

	if srcAttr != dstAttr {
		srcIdx, dstIdx := edge.AttributeIndex(srcAttr), edge.AttributeIndex(dstAttr)
		switch {
		case srcIdx >= 0 && dstIdx >= 0:
			keys.SourceColumn, keys.DestinationColumn = srcIdx, dstIdx
		case srcIdx >= 0:
			if edge.DestinationIdAttribute == "" {
				return EdgeKeys{}, &core.InvalidKeyColumnError{Edge: edge.Name, Attribute: dstAttr,
					Reason: "destination key is not an edge attribute while the source key is; set destinationIdAttribute"}
			}
			keys.SourceColumn = srcIdx
		case dstIdx >= 0:
			if edge.SourceIdAttribute == "" {
				return EdgeKeys{}, &core.InvalidKeyColumnError{Edge: edge.Name, Attribute: srcAttr,
					Reason: "source key is not an edge attribute while the destination key is; set sourceIdAttribute"}
			}
			keys.DestinationColumn = dstIdx
		}
	}

	if edge.SourceIdAttribute != "" {
		idx := edge.AttributeIndex(edge.SourceIdAttribute)
		if idx < 0 {
			return EdgeKeys{}, &core.InvalidKeyColumnError{Edge: edge.Name, Attribute: edge.SourceIdAttribute, Reason: "not one of the edge's attributes"}
		}
		keys.SourceColumn = idx
	}
	if edge.DestinationIdAttribute != "" {
		idx := edge.AttributeIndex(edge.DestinationIdAttribute)
		if idx < 0 {
			return EdgeKeys{}, &core.InvalidKeyColumnError{Edge: edge.Name, Attribute: edge.DestinationIdAttribute, Reason: "not one of the edge's attributes"}
		}
		keys.DestinationColumn = idx
	}

	if keys.SourceColumn >= len(edge.Attributes) || keys.DestinationColumn >= len(edge.Attributes) {
		return EdgeKeys{}, &core.InvalidKeyColumnError{Edge: edge.Name, Reason: "edge declares too few attributes for its endpoint keys"}
	}
	if keys.SourceColumn == keys.DestinationColumn {
		return EdgeKeys{}, &core.InvalidKeyColumnError{Edge: edge.Name, Attribute: edge.Attributes[keys.SourceColumn], Reason: "used for both endpoint keys"}
	}

	return keys, nil
}

func (r *Registry) endpointAttribute(edge *core.EdgeDefinition, nodeName string) (string, error) {
	if _, ok := r.nodes[nodeName]; !ok {
		return "", &core.UnknownNodeReferenceError{Edge: edge.Name, Node: nodeName}
	}
	attr, err := r.ResolvePrimaryKeyAttribute(nodeName)
	if err != nil {
		return "", fmt.Errorf("edge %q: %w", edge.Name, err)
	}
	return attr, nil
}

// Node returns the named node definition.
func (r *Registry) Node(name string) (*core.NodeDefinition, bool) {
	node, ok := r.nodes[name]
	return node, ok
}

// Edge returns the named edge definition.
func (r *Registry) Edge(name string) (*core.EdgeDefinition, bool) {
	edge, ok := r.edges[name]
	return edge, ok
}

// EdgeKeys returns the resolved endpoint keys of the named edge.
func (r *Registry) EdgeKeys(edgeName string) (EdgeKeys, bool) {
	keys, ok := r.edgeKeys[edgeName]
	return keys, ok
}

// Nodes returns node definitions in declaration order.
func (r *Registry) Nodes() []*core.NodeDefinition {
	return r.nodeOrder
}

// Edges returns edge definitions in declaration order.
func (r *Registry) Edges() []*core.EdgeDefinition {
	return r.edgeOrder
}

// Len returns the total number of indexed entities.
func (r *Registry) Len() int {
	return len(r.nodes) + len(r.edges)
}

// CheckDataDirs verifies that every entity's data directory exists.
// It returns a *core.MissingDataDirError for the first one that does not.
func (r *Registry) CheckDataDirs() error {
	check := func(e *core.EntityDefinition) error {
		info, err := os.Stat(e.PathToData)
		if err != nil {
			return &core.MissingDataDirError{Entity: e.Name, Path: e.PathToData, Err: err}
		}
		if !info.IsDir() {
			return &core.MissingDataDirError{Entity: e.Name, Path: e.PathToData, Err: fmt.Errorf("not a directory")}
		}
		return nil
	}

	for _, node := range r.nodeOrder {
		if err := check(&node.EntityDefinition); err != nil {
			return err
		}
	}
	for _, edge := range r.edgeOrder {
		if err := check(&edge.EntityDefinition); err != nil {
			return err
		}
	}
	return nil
}
