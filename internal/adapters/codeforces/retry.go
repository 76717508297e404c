package codeforces

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/growthlens/pkg/logger"
	"github.com/okian/growthlens/pkg/metrics"
)

// withRetry runs op up to attempts times, waiting attempt*backoff between
// failures. Permanent errors and context cancellation stop immediately.
func (c *Client) withRetry(ctx context.Context, method string, op func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) || ctx.Err() != nil {
			return err
		}
		if attempt == c.attempts {
			break
		}

		wait := time.Duration(attempt) * c.backoff
		c.logger.Warn(ctx, "request failed, retrying",
			logger.String("method", method),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", c.attempts),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
		metrics.RecordAPIRetry(method)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, c.attempts, err)
}
