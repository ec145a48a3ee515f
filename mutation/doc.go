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


// Package mutation turns parsed records into graph mutations.
//
// A mutation is an Operation: an ordered list of steps drawn from a closed set
// of variants (AddVertex, MatchVertex, AddEdge, Connect). Operations carry no
// store-specific syntax. Cypher and Gremlin render an Operation into the text
// a particular store expects, so the Builder can be tested without a store.
//
// Vertex creation is a single AddVertex step. Edge creation is
//
//	MatchVertex(source key) -> AddEdge(label, properties) -> Connect(MatchVertex(destination key))
//
// and presupposes that both endpoint vertices already exist.
package mutation
