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

// Package recorder persists search history in the background.
//
// A Recorder receives the query records produced by a search.Engine, puts
// them on a bounded queue and writes them to a storage.HistoryRepository
// from a worker pool, so that searches never wait on disk I/O. Records that
// arrive while the queue is full are dropped.
//
// Basic usage:
//
//	repo, _ := badger.OpenHistoryRepository("/path/to/history", nil)
//	rec, _ := recorder.NewRecorder(repo)
//	defer rec.Close()
//
//	engine, _ := search.NewEngine(store, synonyms, search.WithHistorySink(rec))
//
// A failed write is retried with exponential backoff (see WithRetry) unless
// the repository is closed. Errors that remain are logged and do not affect
// searches. Flush waits
// for every submitted record to be written; Close flushes and releases the
// pool. The repository stays owned by the caller.
package recorder
