package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RequestBudget throttles outbound API calls against GitHub's
// documented rate-limit headers. It starts from the standard
// authenticated allowance and converges on the server's view as
// responses arrive.
type RequestBudget struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	cooldown  time.Time
	probed    bool
	notify    chan struct{}
	now       func() time.Time
}

func NewRequestBudget() *RequestBudget {
	return &RequestBudget{
		remaining: 5000,
		reset:     time.Now().Add(time.Hour),
		notify:    make(chan struct{}),
		now:       time.Now,
	}
}

func (b *RequestBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Acquire blocks until n request slots are available or ctx ends.
func (b *RequestBudget) Acquire(ctx context.Context, n int) error {
	if b == nil {
		return fmt.Errorf("acquire: nil RequestBudget")
	}
	if n <= 0 {
		return fmt.Errorf("acquire: n must be positive, got %d", n)
	}
	for range n {
		if err := b.acquireOne(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *RequestBudget) acquireOne(ctx context.Context) error {
	for {
		b.mu.Lock()
		now := b.now()

		if now.Before(b.cooldown) {
			deadline, ch := b.cooldown, b.notify
			b.mu.Unlock()
			if err := waitBudget(ctx, ch, deadline.Sub(now)); err != nil {
				return err
			}
			continue
		}

		if b.remaining > 0 {
			b.remaining--
			b.mu.Unlock()
			return nil
		}

		if !now.Before(b.reset) {
			// The window should have reset but no response has confirmed
			// it yet. Let exactly one probe through; everyone else waits
			// for the probe's headers.
			if !b.probed {
				b.probed = true
				b.mu.Unlock()
				return nil
			}
			ch := b.notify
			b.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ch:
			}
			continue
		}

		deadline, ch := b.reset, b.notify
		b.mu.Unlock()
		if err := waitBudget(ctx, ch, deadline.Sub(now)); err != nil {
			return err
		}
	}
}

// waitBudget sleeps until the duration elapses, the budget changes, or
// ctx ends. Waking on either non-error path sends the caller back
// around the acquire loop to re-check state.
func waitBudget(ctx context.Context, changed <-chan struct{}, d time.Duration) error {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-changed:
		return nil
	case <-timer.C:
		return nil
	}
}

// UpdateFromResponse folds a response's rate-limit headers into the
// budget and wakes any blocked waiters when something changed. A
// Retry-After header imposes a cooldown during which no request is
// released regardless of the remaining count.
func (b *RequestBudget) UpdateFromResponse(resp *http.Response) {
	if b == nil || resp == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false
	if s := resp.Header.Get("Retry-After"); s != "" {
		if seconds, err := strconv.Atoi(s); err == nil && seconds > 0 {
			until := b.now().Add(time.Duration(seconds) * time.Second)
			if until.After(b.cooldown) {
				b.cooldown = until
				changed = true
			}
		}
	}
	if s := resp.Header.Get("X-RateLimit-Remaining"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 && v != b.remaining {
			b.remaining = v
			changed = true
		}
	}
	if s := resp.Header.Get("X-RateLimit-Reset"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			reset := time.Unix(v, 0)
			if !reset.Equal(b.reset) {
				b.reset = reset
				changed = true
			}
		}
	}
	if changed {
		b.probed = false
		b.signal()
	}
}

// signal wakes all waiters. Callers hold mu.
func (b *RequestBudget) signal() {
	close(b.notify)
	b.notify = make(chan struct{})
}
