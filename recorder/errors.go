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

package recorder

import "errors"

var (
	// ErrRepositoryRequired is returned when a history repository is not provided.
	ErrRepositoryRequired = errors.New("history repository required")

	// ErrRecorderClosed is returned when a record is submitted after Close.
	ErrRecorderClosed = errors.New("recorder is closed")

	// ErrQueueFull is returned when a record is submitted while every queue slot is taken.
	ErrQueueFull = errors.New("recorder queue is full")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
