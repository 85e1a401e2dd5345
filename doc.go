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

// Package kbsearch is a semantic search engine over a fixed knowledge base
// of help entries.
//
// A query is tokenized, expanded with synonyms and scored against every
// entry with fuzzy token matching. Results above a threshold are ranked by
// score with a human-readable explanation of each match.
//
// Library wires the pieces together from a config.Config:
//
//	lib, err := kbsearch.Open(config.NewConfig(
//	    config.WithCorpusPath("/srv/kb/corpus.yaml"),
//	    config.WithHistoryDB("/var/lib/kbsearch"),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Close()
//
//	for _, r := range lib.Search("créer un budget") {
//	    fmt.Println(r.Entry.Title, r.Score, r.MatchReasons)
//	}
//
// The search package holds the engine itself and can be used without a
// Library; corpus loads knowledge bases; storage and recorder persist the
// query history.
package kbsearch
