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

import (
	"errors"
	"fmt"
)

// Structural errors. Any of these aborts a run before uploading starts.
var (
	// ErrConfigParse indicates the graph config is malformed or incomplete.
	ErrConfigParse = errors.New("invalid graph config")

	// ErrDuplicateName indicates two entities of the same kind share a name.
	ErrDuplicateName = errors.New("duplicate entity name")

	// ErrUnknownNodeReference indicates an edge names a node type that is not declared.
	ErrUnknownNodeReference = errors.New("unknown node reference")

	// ErrMissingDataDir indicates an entity's data directory is absent or not a directory.
	ErrMissingDataDir = errors.New("missing data directory")

	// ErrInvalidKeyColumn indicates an edge's endpoint key column cannot be resolved.
	ErrInvalidKeyColumn = errors.New("invalid key column")
)

// ConfigParseError reports a malformed graph config.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrConfigParse, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", ErrConfigParse, e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() []error {
	return []error{ErrConfigParse, e.Err}
}

// DuplicateNameError reports two entities of one kind sharing a name.
type DuplicateNameError struct {
	Kind EntityKind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %s %q declared more than once", ErrDuplicateName, e.Kind, e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// UnknownNodeReferenceError reports a node name that no NodeDefinition declares.
// Edge is empty when the lookup did not originate from an edge.
type UnknownNodeReferenceError struct {
	Edge string
	Node string
}

func (e *UnknownNodeReferenceError) Error() string {
	if e.Edge == "" {
		return fmt.Sprintf("%s: node %q is not declared", ErrUnknownNodeReference, e.Node)
	}
	return fmt.Sprintf("%s: edge %q references undeclared node %q", ErrUnknownNodeReference, e.Edge, e.Node)
}

func (e *UnknownNodeReferenceError) Unwrap() error {
	return ErrUnknownNodeReference
}

// MissingDataDirError reports an entity whose data directory cannot be used.
type MissingDataDirError struct {
	Entity string
	Path   string
	Err    error
}

func (e *MissingDataDirError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrMissingDataDir, e.Entity, e.Path, e.Err)
}

func (e *MissingDataDirError) Unwrap() []error {
	return []error{ErrMissingDataDir, e.Err}
}

// InvalidKeyColumnError reports an edge endpoint key column that does not resolve.
type InvalidKeyColumnError struct {
	Edge      string
	Attribute string
	Reason    string
}

func (e *InvalidKeyColumnError) Error() string {
	return fmt.Sprintf("%s: edge %q attribute %q: %s", ErrInvalidKeyColumn, e.Edge, e.Attribute, e.Reason)
}

func (e *InvalidKeyColumnError) Unwrap() error {
	return ErrInvalidKeyColumn
}

// Definition validation errors
var (
	// ErrEmptyName indicates an entity without a name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyDataPath indicates an entity without a data directory.
	ErrEmptyDataPath = errors.New("pathToData cannot be empty")

	// ErrNoAttributes indicates an entity that declares no attributes.
	ErrNoAttributes = errors.New("attributes cannot be empty")

	// ErrDuplicateAttribute indicates an attribute name declared twice on one entity.
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrUnknownNodeIdAttribute indicates a nodeIdAttribute that is not one of the node's attributes.
	ErrUnknownNodeIdAttribute = errors.New("nodeIdAttribute must name one of the node's attributes")

	// ErrMissingNodeIdAttribute indicates an edge endpoint whose node type declares no nodeIdAttribute.
	ErrMissingNodeIdAttribute = errors.New("node has no nodeIdAttribute")

	// ErrMissingEndpoint indicates an edge without sourceNode or destinationNode.
	ErrMissingEndpoint = errors.New("sourceNode and destinationNode are required")

	// ErrTooFewEdgeAttributes indicates an edge without room for both endpoint keys.
	ErrTooFewEdgeAttributes = errors.New("edges need at least two attributes")
)
