// Package queue provides a FIFO single-flight executor: operations run one
// at a time, in submission order, so the remote service never sees
// overlapping report requests from this process.
package queue

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// FIFO serializes submitted operations. The zero value is usable and
// unthrottled.
//
// Ordering is enforced by chaining completion channels at submission time:
// if Do(A) is entered strictly before Do(B), A's operation completes
// (success or failure) before B's begins. There is no reordering, priority,
// cancellation of queued work, or retry. A failing operation propagates its
// error to its own caller only; the lane proceeds to the next entry.
type FIFO struct {
	mu      sync.Mutex
	tail    chan struct{}
	limiter *rate.Limiter
}

// New returns a FIFO throttled by limiter. A nil limiter runs unthrottled.
func New(limiter *rate.Limiter) *FIFO {
	return &FIFO{limiter: limiter}
}

// NewLimited returns a FIFO allowing rps operations per second with the
// given burst.
func NewLimited(rps float64, burst int) *FIFO {
	return New(rate.NewLimiter(rate.Limit(rps), burst))
}

// Do runs op after every previously submitted operation has completed and
// returns exactly what op returns. The wait for the limiter honors ctx; the
// wait for the predecessor does not, because skipping ahead would break the
// ordering contract for everything queued behind this entry.
func (q *FIFO) Do(ctx context.Context, op func(context.Context) error) error {
	q.mu.Lock()
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	q.mu.Unlock()
	defer close(done)

	if prev != nil {
		<-prev
	}
	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return op(ctx)
}

// Do runs op on q and returns its typed result.
func Do[T any](q *FIFO, ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := q.Do(ctx, func(ctx context.Context) error {
		var opErr error
		out, opErr = op(ctx)
		return opErr
	})
	return out, err
}
