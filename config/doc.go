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

// Package config holds the settings of a kbsearch process.
//
// Configuration is resolved in layers: built-in defaults, then an optional
// TOML file, then environment variables, then command-line flags applied by
// the caller through options. Example file:
//
//	[corpus]
//	path = "/srv/kb/corpus.yaml"   # empty selects the embedded corpus
//
//	[search]
//	max_results = 5
//	threshold = 0.5
//	semantic_expansion = true
//	synonym_closure = "first"      # or "union"
//	history_capacity = 20
//
//	[history]
//	db_path = "/var/lib/kbsearch"  # empty disables persistent history
//	in_memory = false
//	pool_size = 1
//
//	[log]
//	level = "info"
package config
