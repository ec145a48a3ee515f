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


package loader

import (
	"errors"
	"fmt"

	"github.com/poiesic/graphload/core"
)

var (
	// ErrRegistryRequired is returned when a nil registry is provided.
	ErrRegistryRequired = errors.New("registry is required")

	// ErrClientRequired is returned when a nil graph store client is provided.
	ErrClientRequired = errors.New("graph store client is required")

	// ErrCollectorRequired is returned when a nil error collector is provided.
	ErrCollectorRequired = errors.New("error collector is required")

	// ErrTaskPanic is wrapped by the error of a task that panicked.
	ErrTaskPanic = errors.New("upload task panicked")

	// ErrTaskNotStarted is wrapped by the error of a task the pool refused.
	ErrTaskNotStarted = errors.New("upload task could not be started")
)

// TaskError reports an upload task that failed as a whole.
type TaskError struct {
	Entity string
	Kind   core.EntityKind
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Entity, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
