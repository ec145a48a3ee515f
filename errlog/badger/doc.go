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


// Package badger journals error records in a BadgerDB database.
//
// Each load opens a run identified by a core.ID. Records appended through a
// run are stored under that run as they happen, so the failures of a run
// remain available after the process exits, independent of the flat error
// log. Values are encoded with mus serializers.
//
// Key layout:
//
//	run:<id>            run metadata (label, start time)
//	err:<id>:<seq>      one error record; seq orders records within the journal
//	seq:errors          badger sequence for <seq>
package badger
