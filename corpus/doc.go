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

// Package corpus loads the knowledge base searched by kbsearch.
//
// A corpus is a Bundle: the knowledge entries, the synonym groups used for
// semantic expansion and a curated list of popular searches. Bundles come
// from three sources:
//
//   - Default returns the bundle compiled into the binary.
//   - Parse and LoadFile read a YAML document with the top-level keys
//     entries, synonyms and popular.
//   - LoadFile on a directory reads every markdown file as one entry. The
//     front matter holds the entry fields and the body becomes its content.
//     An optional synonyms.yaml next to the notes provides synonyms and
//     popular searches.
//
// Loaded bundles are validated before they are returned.
package corpus
