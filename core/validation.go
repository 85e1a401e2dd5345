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

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateEntry validates a KnowledgeEntry according to corpus rules.
//
// Validation rules:
//   - ID must not be empty
//   - Category must not be empty
//
// Every other field is optional.
func ValidateEntry(entry *KnowledgeEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}
	if err := validate.Struct(entry); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %w", ErrInvalidEntry, fieldError(fieldErrs[0]))
		}
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "ID":
		return ErrEmptyID
	case "Category":
		return ErrEmptyCategory
	}
	return fmt.Errorf("field %s failed %q", fe.Field(), fe.Tag())
}

// ValidateCorpus validates every entry and checks that ids are unique.
// Errors identify the offending entry by position and id.
func ValidateCorpus(entries []KnowledgeEntry) error {
	seen := make(map[string]int, len(entries))
	for i := range entries {
		if err := ValidateEntry(&entries[i]); err != nil {
			return fmt.Errorf("entry %d (%q): %w", i, entries[i].ID, err)
		}
		if first, ok := seen[entries[i].ID]; ok {
			return fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateID, entries[i].ID, first, i)
		}
		seen[entries[i].ID] = i
	}
	return nil
}

// ValidateSynonymGroups checks that every group names its canonical term
// and that no canonical term (case-insensitive) is declared twice.
func ValidateSynonymGroups(groups []SynonymGroup) error {
	seen := make(map[string]int, len(groups))
	for i, g := range groups {
		term := strings.ToLower(strings.TrimSpace(g.Term))
		if term == "" {
			return fmt.Errorf("%w: group %d has no term", ErrInvalidSynonymGroup, i)
		}
		if first, ok := seen[term]; ok {
			return fmt.Errorf("%w: term %q declared by groups %d and %d", ErrInvalidSynonymGroup, term, first, i)
		}
		seen[term] = i
	}
	return nil
}
