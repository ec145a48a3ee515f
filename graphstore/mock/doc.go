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


// Package mock provides a test double for graphstore.Client.
//
// The default behavior reports every operation as applied. Custom behavior is
// injected through ExecuteFunc, and every call is recorded with its start and
// finish time so tests can check ordering between loader phases.
//
//	client := mock.NewClient().WithExecuteFunc(func(ctx context.Context, op mutation.Operation) ([]string, error) {
//	    return []string{"[]"}, nil
//	})
package mock
