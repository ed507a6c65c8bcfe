package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo_RunsInSubmissionOrder(t *testing.T) {
	q := New(nil)
	ctx := context.Background()

	release := make(chan struct{})
	aStarted := make(chan struct{})
	var events []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = q.Do(ctx, func(context.Context) error {
			record("a start")
			close(aStarted)
			<-release
			record("a end")
			return nil
		})
	}()

	<-aStarted
	bDone := make(chan struct{})
	go func() {
		defer wg.Done()
		_ = q.Do(ctx, func(context.Context) error {
			record("b start")
			record("b end")
			return nil
		})
		close(bDone)
	}()

	// B was submitted while A is still running; it must not start yet.
	select {
	case <-bDone:
		t.Fatal("second operation completed while first was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()

	require.Equal(t, []string{"a start", "a end", "b start", "b end"}, events)
}

func TestDo_FailureDoesNotPoisonLane(t *testing.T) {
	q := New(nil)
	ctx := context.Background()

	boom := errors.New("boom")
	err := q.Do(ctx, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	ran := false
	err = q.Do(ctx, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestDo_NoOverlapUnderConcurrency(t *testing.T) {
	q := New(nil)
	ctx := context.Background()

	var mu sync.Mutex
	active, maxActive, total := 0, 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(ctx, func(context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				total++
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 32, total)
	require.Equal(t, 1, maxActive, "operations overlapped")
}

func TestDoTyped_ReturnsResult(t *testing.T) {
	q := New(nil)
	got, err := Do(q, context.Background(), func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, got)
}

func TestDo_LimiterHonorsContext(t *testing.T) {
	// 1 op per hour with burst 1: the second submission must wait on the
	// limiter and give up when its context is cancelled.
	q := NewLimited(1.0/3600, 1)
	ctx := context.Background()
	require.NoError(t, q.Do(ctx, func(context.Context) error { return nil }))

	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := q.Do(cancelled, func(context.Context) error { return nil })
	require.Error(t, err)
}
