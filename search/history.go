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

package search

import "sync"

// DefaultHistoryCapacity is the number of queries kept by a History
// created with a non-positive capacity.
const DefaultHistoryCapacity = 20

// History is a bounded FIFO of raw query strings. When full, pushing a
// query evicts the oldest one. It is safe for concurrent use.
type History struct {
	mu    sync.Mutex
	buf   []string
	start int // index of the oldest query
	size  int
}

// NewHistory creates a history holding at most capacity queries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]string, capacity)}
}

// Push appends query, evicting the oldest query when the history is full.
func (h *History) Push(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = query
		h.size++
		return
	}
	h.buf[h.start] = query
	h.start = (h.start + 1) % len(h.buf)
}

// Queries returns the stored queries, oldest first.
func (h *History) Queries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, h.size)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of stored queries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Capacity returns the maximum number of stored queries.
func (h *History) Capacity() int {
	return len(h.buf)
}
