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


// Package graphstore defines the boundary between the loader and the remote graph store.
//
// A Client executes one mutation.Operation and returns the store's result
// sequence. Interpreting the sequence is left to mutation.Succeeded: a call
// that returns no transport error may still have created nothing.
//
// Implementations live in sub-packages:
//   - neo4j: executes operations as Cypher through the Neo4j driver
//   - dryrun: renders operations to a writer without contacting a store
//   - mock: a test double with call recording
package graphstore
