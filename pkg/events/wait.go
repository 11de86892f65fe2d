package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"

	"github.com/thesyncim/browsertest/pkg/internal"
	"github.com/thesyncim/browsertest/pkg/logging"
)

// DefaultTimeout is how long WaitForEvent waits when no timeout is given.
const DefaultTimeout = 5000 * time.Millisecond

// ErrTimeout is matched by every TimeoutError via errors.Is.
var ErrTimeout = errors.New("timeout exceeded")

// TimeoutError reports that no matching event fired in time.
type TimeoutError struct {
	Event   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout of %dms exceeded while waiting for event %s", e.Timeout.Milliseconds(), e.Event)
}

// Is makes errors.Is(err, ErrTimeout) true.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Predicate filters event payloads. A nil Predicate accepts every payload.
type Predicate[T any] func(T) bool

// WaitOption configures WaitForEvent.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout time.Duration
	clock   internal.Clock
	logger  *log.Logger
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock sets the clock used to schedule the timeout.
func WithClock(c internal.Clock) WaitOption {
	return func(o *waitOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger that records timeouts.
func WithLogger(l *log.Logger) WaitOption {
	return func(o *waitOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WaitForEventAsync subscribes to name on src and returns a Deferred that
// resolves with the first payload accepted by pred. It is rejected with a
// *TimeoutError when the timeout elapses first, or with ctx.Err() when ctx is
// done first. The listener is detached from src before the Deferred settles,
// whichever way it settles.
func WaitForEventAsync[T any](ctx context.Context, src Source[T], name string, pred Predicate[T], opts ...WaitOption) *Deferred[T] {
	o := waitOptions{
		timeout: DefaultTimeout,
		clock:   internal.MonotonicClock{},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if pred == nil {
		pred = func(T) bool { return true }
	}

	d := NewDeferred[T]()
	matched := make(chan T, 1)
	var committed atomic.Bool

	l := NewListener(func(payload T) {
		if committed.Load() || !pred(payload) {
			return
		}
		if committed.CompareAndSwap(false, true) {
			matched <- payload
		}
	})
	src.On(name, l)

	// Scheduled before returning so a clock advanced by the caller right
	// after this call still fires the timer.
	timer := o.clock.After(o.timeout)

	go func() {
		var (
			payload T
			err     error
		)
		select {
		case payload = <-matched:
		case <-timer:
			err = &TimeoutError{Event: name, Timeout: o.timeout}
			o.logger.Debug().Str("event", name).Dur("timeout", o.timeout).Msg("event wait timed out")
		case <-ctx.Done():
			err = fmt.Errorf("waiting for event %s: %w", name, ctx.Err())
		}

		src.Off(name, l)
		committed.Store(true)

		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(payload)
	}()

	return d
}

// WaitForEvent is the blocking form of WaitForEventAsync.
func WaitForEvent[T any](ctx context.Context, src Source[T], name string, pred Predicate[T], opts ...WaitOption) (T, error) {
	// The deferred settles on its own once ctx is done.
	return WaitForEventAsync(ctx, src, name, pred, opts...).Wait(context.Background())
}
