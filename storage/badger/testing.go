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

package badger

import "github.com/poiesic/kbsearch/storage"

// NewMemoryHistoryRepository creates an in-memory history repository, used by
// tests and by in-memory history configurations. Closing the repository
// discards its content.
func NewMemoryHistoryRepository() (storage.HistoryRepository, error) {
	return openOwned("", true, nil)
}
