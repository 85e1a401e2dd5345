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

package core

import "errors"

// Corpus validation errors
var (
	// ErrInvalidEntry indicates a KnowledgeEntry failed validation.
	ErrInvalidEntry = errors.New("invalid knowledge entry")

	// ErrEmptyID indicates the entry id is empty.
	ErrEmptyID = errors.New("entry id cannot be empty")

	// ErrEmptyCategory indicates the entry category is empty.
	ErrEmptyCategory = errors.New("entry category cannot be empty")

	// ErrDuplicateID indicates two entries share the same id.
	ErrDuplicateID = errors.New("duplicate entry id")

	// ErrInvalidSynonymGroup indicates a synonym group without a term.
	ErrInvalidSynonymGroup = errors.New("invalid synonym group")
)
