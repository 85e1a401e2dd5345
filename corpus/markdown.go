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

package corpus

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/poiesic/kbsearch/core"
)

// synonymsFile is the optional file of a markdown corpus holding synonym
// groups and popular searches.
const synonymsFile = "synonyms.yaml"

// LoadMarkdownDir builds a bundle from the markdown notes under dir.
//
// Notes are read in lexical path order. An entry without an id in its front
// matter is named after its path relative to dir, without extension, using
// forward slashes.
func LoadMarkdownDir(dir string) (*Bundle, error) {
	var b Bundle

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entry, err := ParseNote(content, strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)))
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		b.Entries = append(b.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}

	if f, err := os.Open(filepath.Join(dir, synonymsFile)); err == nil {
		extra, err := decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", synonymsFile, err)
		}
		b.Synonyms = extra.Synonyms
		b.Popular = extra.Popular
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening %s: %w", synonymsFile, err)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return &b, nil
}

// ParseNote decodes a markdown note into a knowledge entry. The front
// matter holds the entry fields; the body becomes the content unless the
// front matter sets one. defaultID is used when the front matter has no id.
func ParseNote(content []byte, defaultID string) (core.KnowledgeEntry, error) {
	var entry core.KnowledgeEntry
	body, err := frontmatter.Parse(bytes.NewReader(content), &entry)
	if err != nil {
		return core.KnowledgeEntry{}, fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}
	if entry.ID == "" {
		entry.ID = defaultID
	}
	if entry.Content == "" {
		entry.Content = strings.TrimSpace(string(body))
	}
	return entry, nil
}
