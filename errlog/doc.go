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


// Package errlog collects the records a load could not write.
//
// A Collector is shared by every upload task of a run. Appends are
// mutex-guarded; the content is written out once, one line per record, when
// the run ends. A Collector may also forward each record to a Sink as it
// arrives, such as the badger-backed journal in errlog/badger.
package errlog
