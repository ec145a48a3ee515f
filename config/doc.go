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


// Package config loads the graph declaration and the run-level settings of a load.
//
// The graph declaration lists node and edge types:
//
//	{
//	  "nodes": [
//	    {"name": "Person", "pathToData": "data/person", "attributes": ["id", "name"], "nodeIdAttribute": "id"}
//	  ],
//	  "edges": [
//	    {"name": "Knows", "pathToData": "data/knows", "attributes": ["fromId", "toId", "since"],
//	     "sourceNode": "Person", "destinationNode": "Person"}
//	  ]
//	}
//
// JSON and YAML are both accepted. Relative data paths resolve against the
// directory holding the declaration file.
package config
