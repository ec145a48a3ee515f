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


// Package loader uploads the entities of a registry to a graph store.
//
// A run has two phases. The node phase creates the vertices of every node
// type, one upload task per type. The edge phase starts only after every node
// task has finished, and creates the edges of every edge type the same way.
// Within a phase at most the configured number of tasks run at once.
//
// A task reads every record of its entity type in sequence, builds one
// mutation per record and executes it. Records that cannot be built or are
// not confirmed by the store become error records in the collector; the task
// moves on to the next record. Only a task that cannot read its data, or
// that panics, fails the run.
//
// Basic usage:
//
//	l, err := loader.NewLoader(reg, client, collector,
//		loader.WithConcurrency(4),
//		loader.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer l.Release()
//
//	result, err := l.Run(ctx)
package loader
