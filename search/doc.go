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

// Package search provides lexical semantic search over a fixed corpus of
// knowledge entries.
//
// The Engine type ranks entries with a deterministic multi-stage algorithm:
//   - Tokenization with lower-casing and stop-word filtering
//   - Synonym expansion through a precomputed table
//   - Fuzzy token matching (equality, synonyms, containment, edit distance)
//   - Weighted, additive scoring across title, keywords, description,
//     content and category
//
// Results above a threshold are sorted by score and truncated. The engine
// also produces query suggestions and keeps a bounded history of recent
// queries for diagnostics.
package search
