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
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/kbsearch/core"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultBundle []byte

// Bundle is a complete knowledge base.
type Bundle struct {
	Entries  []core.KnowledgeEntry `yaml:"entries"`
	Synonyms []core.SynonymGroup   `yaml:"synonyms,omitempty"`
	Popular  []string              `yaml:"popular,omitempty"`
}

// Validate checks the entries and synonym groups of the bundle.
func (b *Bundle) Validate() error {
	if err := core.ValidateCorpus(b.Entries); err != nil {
		return err
	}
	return core.ValidateSynonymGroups(b.Synonyms)
}

// Default returns the knowledge base compiled into the binary.
func Default() (*Bundle, error) {
	return Parse(bytes.NewReader(defaultBundle))
}

// Parse decodes and validates a YAML bundle. Unknown keys are rejected.
func Parse(r io.Reader) (*Bundle, error) {
	b, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func decode(r io.Reader) (*Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var b Bundle
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}
	return &b, nil
}

// LoadFile loads a bundle from a YAML file or from a directory of
// markdown notes.
func LoadFile(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	if info.IsDir() {
		return LoadMarkdownDir(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return b, nil
}

// Save writes b to path as YAML.
func (b *Bundle) Save(path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing corpus: %w", err)
	}
	return nil
}

// Categories returns the distinct categories of the bundle, sorted.
func (b *Bundle) Categories() []string {
	var out []string
	for _, e := range b.Entries {
		if !slices.Contains(out, e.Category) {
			out = append(out, e.Category)
		}
	}
	slices.Sort(out)
	return out
}
