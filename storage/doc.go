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

// Package storage provides the persistence layer for the kbsearch query
// history.
//
// The knowledge corpus itself is immutable and lives in memory; only the
// record of past searches is stored. This package defines the repository
// interface and the binary encoding of history records so that the search
// code never depends on a specific backend.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return the storage.HistoryRepository
// interface:
//
//	repo, err := badger.OpenHistoryRepository(path)  // returns storage.HistoryRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
// Open a repository on disk:
//
//	repo, err := badger.OpenHistoryRepository("/path/to/history")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryHistoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation.
// Pass context.Background() for operations without specific timeout
// requirements.
package storage
