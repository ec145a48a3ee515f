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


// Package records reads the tab-delimited data files of an entity type.
//
// Every regular file in an entity's data directory is read line by line and
// each line is split on tabs into positional values. There is no quoting or
// escaping: a value that contains a tab cannot be represented. Column counts
// are not checked here; a row whose width does not match the entity's
// attributes is still yielded so the caller can record it as a failure.
package records
