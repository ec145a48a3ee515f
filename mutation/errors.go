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


package mutation

import "errors"

var (
	// ErrColumnCountMismatch is returned when a record's width differs from its entity's attribute count.
	ErrColumnCountMismatch = errors.New("column count does not match attribute count")

	// ErrEmptyEndpointKey is returned when an edge record has an empty source or destination key.
	ErrEmptyEndpointKey = errors.New("endpoint key is empty")

	// ErrUnknownEdge is returned when the registry has no endpoint keys for an edge.
	ErrUnknownEdge = errors.New("edge is not registered")

	// ErrNotApplied is returned when the store reports that nothing was created.
	ErrNotApplied = errors.New("mutation was not applied")

	// ErrMalformedOperation is returned by renderers for step sequences they cannot express.
	ErrMalformedOperation = errors.New("malformed operation")
)
