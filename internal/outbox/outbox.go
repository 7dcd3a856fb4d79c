package outbox

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/domain"
)

// Pusher is what the dispatcher needs from the remote client.
type Pusher interface {
	Push(ctx context.Context, userID string, cart *domain.Cart) error
}

// Status summarizes the sync state for the UI.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusPending Status = "pending"
	StatusOffline Status = "offline"
)

type task struct {
	seq    uint64
	userID string
	cart   *domain.Cart
}

// Outbox turns fire-and-forget persistence into tracked background sync.
// Each mutation enqueues the full cart snapshot; because the remote store
// is a whole-cart upsert, a newer snapshot supersedes any queued one, so
// only the latest is kept and at most one push is in flight.
type Outbox struct {
	pusher     Pusher
	interval   time.Duration
	maxElapsed time.Duration

	mu        sync.Mutex
	pending   *task
	mutations int
	offline   bool
	seq       uint64

	wake chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
}

// Option configures an Outbox.
type Option func(*Outbox)

// WithMaxElapsedTime caps how long one snapshot is retried before the
// dispatcher gives up until the next tick.
func WithMaxElapsedTime(d time.Duration) Option {
	return func(o *Outbox) {
		o.maxElapsed = d
	}
}

func New(pusher Pusher, interval time.Duration, opts ...Option) *Outbox {
	o := &Outbox{
		pusher:     pusher,
		interval:   interval,
		maxElapsed: 15 * time.Second,
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enqueue replaces any queued snapshot with this one and wakes the
// dispatcher. Never blocks the mutating caller.
func (o *Outbox) Enqueue(userID string, cart *domain.Cart) {
	o.mu.Lock()
	o.seq++
	o.pending = &task{seq: o.seq, userID: userID, cart: cart}
	o.mutations++
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// PendingCount reports how many mutations are not yet confirmed on the
// remote store.
func (o *Outbox) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mutations
}

func (o *Outbox) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.offline:
		return StatusOffline
	case o.pending != nil:
		return StatusPending
	default:
		return StatusSynced
	}
}

// Start launches the dispatcher goroutine. The ticker retries queued work
// left over after a failed push.
func (o *Outbox) Start(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()

		for {
			select {
			case <-o.wake:
				o.dispatch(ctx)
			case <-ticker.C:
				o.dispatch(ctx)
			case <-o.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop shuts the dispatcher down. Queued work is abandoned; the local
// store still has the authoritative state and the next session pushes it.
func (o *Outbox) Stop() {
	close(o.quit)
	o.wg.Wait()
}

func (o *Outbox) dispatch(ctx context.Context) {
	o.mu.Lock()
	t := o.pending
	o.mu.Unlock()
	if t == nil {
		return
	}

	operation := func() (any, error) {
		errPush := o.pusher.Push(ctx, t.userID, t.cart)
		if errPush != nil && errors.Is(errPush, context.Canceled) {
			return nil, backoff.Permanent(errPush)
		}
		return nil, errPush
	}

	bo := backoff.NewExponentialBackOff()
	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(o.maxElapsed))

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		log.Printf("cart sync failed, will retry: %v", err)
		o.offline = true
		return
	}

	o.offline = false
	// A newer snapshot may have been enqueued while this one was in
	// flight; leave it queued for the next pass.
	if o.pending != nil && o.pending.seq == t.seq {
		o.pending = nil
		o.mutations = 0
	}
}
