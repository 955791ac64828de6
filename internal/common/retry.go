package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/passbook/internal/service"
)

// ErrRetriesExhausted wraps the last error once every attempt has failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryableError marks an error as worth retrying or not, overriding the
// default of retrying anything unrecognised.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// backoff tracks the wait between attempts. A Sheets quota error jumps
// straight to the ceiling since the quota window is a minute long.
type backoff struct {
	opts  service.RetryOptions
	delay time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2
	}
	return &backoff{opts: opts, delay: opts.InitialDelay}
}

func (b *backoff) wait(err error) time.Duration {
	if errors.Is(err, ErrSheetsRateLimit) {
		b.delay = b.opts.MaxDelay
	}
	d := b.delay
	b.delay = min(time.Duration(float64(b.delay)*b.opts.Multiplier), b.opts.MaxDelay)
	return d
}

func stopRetrying(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var re *RetryableError
	return errors.As(err, &re) && !re.Retryable
}

// WithRetry runs op until it succeeds, fails permanently or runs out of
// attempts. Used around every Sheets API call.
func WithRetry(ctx context.Context, op func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil || stopRetrying(err) {
			return err
		}
		if attempt >= b.opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}

		d := b.wait(err)
		slog.Warn("Sheets call failed, retrying", "attempt", attempt, "delay", d, "error", err)

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
