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


package core

import "fmt"

// ValidateEntity validates the fields shared by all entity types.
//
// Validation rules:
//   - Name must not be empty
//   - PathToData must not be empty
//   - Attributes must not be empty, and every attribute must be a unique, non-empty name
func ValidateEntity(entity *EntityDefinition) error {
	if entity == nil {
		return fmt.Errorf("entity is nil")
	}

	if entity.Name == "" {
		return ErrEmptyName
	}

	if entity.PathToData == "" {
		return fmt.Errorf("%s: %w", entity.Name, ErrEmptyDataPath)
	}

	if len(entity.Attributes) == 0 {
		return fmt.Errorf("%s: %w", entity.Name, ErrNoAttributes)
	}

	seen := make(map[string]struct{}, len(entity.Attributes))
	for i, attr := range entity.Attributes {
		if attr == "" {
			return fmt.Errorf("%s: attribute %d: %w", entity.Name, i, ErrEmptyName)
		}
		if _, ok := seen[attr]; ok {
			return fmt.Errorf("%s: %w %q", entity.Name, ErrDuplicateAttribute, attr)
		}
		seen[attr] = struct{}{}
	}

	return nil
}

// ValidateNode validates a NodeDefinition.
// NodeIdAttribute is optional, but when set it must be one of the node's attributes.
// Nodes referenced by edges are required to have one by the registry.
func ValidateNode(node *NodeDefinition) error {
	if node == nil {
		return fmt.Errorf("node is nil")
	}

	if err := ValidateEntity(&node.EntityDefinition); err != nil {
		return err
	}

	if node.NodeIdAttribute != "" && node.AttributeIndex(node.NodeIdAttribute) < 0 {
		return fmt.Errorf("%s: %w", node.Name, ErrUnknownNodeIdAttribute)
	}

	return nil
}

// ValidateEdge validates an EdgeDefinition in isolation.
// Whether the endpoints name declared nodes is checked by the registry.
func ValidateEdge(edge *EdgeDefinition) error {
	if edge == nil {
		return fmt.Errorf("edge is nil")
	}

	if err := ValidateEntity(&edge.EntityDefinition); err != nil {
		return err
	}

	if edge.SourceNode == "" || edge.DestinationNode == "" {
		return fmt.Errorf("%s: %w", edge.Name, ErrMissingEndpoint)
	}

	if len(edge.Attributes) < 2 {
		return fmt.Errorf("%s: %w", edge.Name, ErrTooFewEdgeAttributes)
	}

	return nil
}

// ValidateGraphConfig validates every definition in the config.
func ValidateGraphConfig(cfg *GraphConfig) error {
	if cfg == nil {
		return fmt.Errorf("graph config is nil")
	}

	for i, node := range cfg.Nodes {
		if err := ValidateNode(node); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
	}

	for i, edge := range cfg.Edges {
		if err := ValidateEdge(edge); err != nil {
			return fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	return nil
}
