package mutation

import (
	"fmt"

	"github.com/poiesic/graphload/core"
	"github.com/poiesic/graphload/registry"
)

// EmptyResultMarker is the literal result a store returns when a mutation matched nothing.
const EmptyResultMarker = "[]"

// Succeeded reports whether a store result confirms a mutation.
// A result confirms it when it is non-empty and its first element is not EmptyResultMarker.
func Succeeded(results []string) bool {
	return len(results) > 0 && results[0] != EmptyResultMarker
}

// Builder constructs operations from records.
type Builder struct {
	registry *registry.Registry
}

// NewBuilder creates a Builder that resolves edge endpoints through reg.
func NewBuilder(reg *registry.Registry) *Builder {
	return &Builder{registry: reg}
}

// Vertex builds the operation creating one vertex of the node type.
// Properties follow attribute declaration order.
func (b *Builder) Vertex(node *core.NodeDefinition, record core.Record) (Operation, error) {
	if err := checkWidth(&node.EntityDefinition, record); err != nil {
		return Operation{}, err
	}

	props := make([]Property, len(node.Attributes))
	for i, attr := range node.Attributes {
		props[i] = Property{Key: attr, Value: record.Values[i]}
	}

	return Operation{
		Entity: node.Name,
		Kind:   core.EntityKindNode,
		Steps: []Step{
			AddVertex{Label: node.Name, Properties: props},
		},
	}, nil
}

// Edge builds the operation creating one edge between existing vertices.
// Every column except the two endpoint keys, and any column named like an
// endpoint primary key, becomes an edge property.
func (b *Builder) Edge(edge *core.EdgeDefinition, record core.Record) (Operation, error) {
	keys, ok := b.registry.EdgeKeys(edge.Name)
	if !ok {
		return Operation{}, fmt.Errorf("%w: %s", ErrUnknownEdge, edge.Name)
	}

	if err := checkWidth(&edge.EntityDefinition, record); err != nil {
		return Operation{}, err
	}

	srcKey := record.Values[keys.SourceColumn]
	dstKey := record.Values[keys.DestinationColumn]
	if srcKey == "" {
		return Operation{}, fmt.Errorf("%w: %s", ErrEmptyEndpointKey, edge.Attributes[keys.SourceColumn])
	}
	if dstKey == "" {
		return Operation{}, fmt.Errorf("%w: %s", ErrEmptyEndpointKey, edge.Attributes[keys.DestinationColumn])
	}

	props := make([]Property, 0, len(edge.Attributes)-2)
	for i, attr := range edge.Attributes {
		if keys.IsKeyColumn(i) || attr == keys.SourceAttribute || attr == keys.DestinationAttribute {
			continue
		}
		props = append(props, Property{Key: attr, Value: record.Values[i]})
	}

	return Operation{
		Entity: edge.Name,
		Kind:   core.EntityKindEdge,
		Steps: []Step{
			MatchVertex{Label: edge.SourceNode, Attribute: keys.SourceAttribute, Value: srcKey},
			AddEdge{Label: edge.Label(), Properties: props},
			Connect{To: MatchVertex{Label: edge.DestinationNode, Attribute: keys.DestinationAttribute, Value: dstKey}},
		},
	}, nil
}

func checkWidth(entity *core.EntityDefinition, record core.Record) error {
	if len(record.Values) != len(entity.Attributes) {
		return fmt.Errorf("%w: got %d columns, %s declares %d attributes",
			ErrColumnCountMismatch, len(record.Values), entity.Name, len(entity.Attributes))
	}
	return nil
}
