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

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/kbsearch/storage"
)

// retryWithBackoff runs operation until it succeeds, fails permanently or
// maxAttempts is reached. The delay doubles after each failed attempt.
// It returns the error of the last attempt.
func retryWithBackoff(ctx context.Context, logger *slog.Logger, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("write succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if permanent(lastErr) || attempt == maxAttempts {
			break
		}

		logger.Debug("write failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}

// permanent reports whether retrying err cannot succeed.
func permanent(err error) bool {
	return errors.Is(err, storage.ErrStorageClosed) ||
		errors.Is(err, storage.ErrSerializationFailed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
