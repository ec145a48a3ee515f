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


// Package registry indexes the declared node and edge types of a load.
//
// A Registry is built once from a validated core.GraphConfig. Every structural
// problem (duplicate names, edges naming undeclared nodes, endpoint key columns
// that cannot be resolved) is reported by Build, before any data is read.
// After construction a Registry is never mutated and is safe for concurrent
// reads without locking.
package registry
