package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
	"github.com/Clark-Hu/movie-lookup/internal/logger"
	"github.com/Clark-Hu/movie-lookup/internal/omdb"
)

const (
	// DefaultTimeout bounds the network call.
	DefaultTimeout = 5 * time.Second
	// DefaultSettleDelay is the flat wait applied after a response arrives and
	// before it becomes visible in state.
	DefaultSettleDelay = 3 * time.Second

	defaultSubscriberBuffer = 16
)

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	Timeout          time.Duration
	SettleDelay      time.Duration
	SubscriberBuffer int
	Observers        []Observer
	Logger           *zap.SugaredLogger
}

// Controller owns the fetch-and-render lifecycle of the lookup screen.
//
// Lookups are neither serialized nor cancelled by newer ones: when two
// overlap, whichever settles last determines the final state.
type Controller struct {
	client      omdb.Client
	timeout     time.Duration
	settleDelay time.Duration
	observers   []Observer
	logger      *zap.SugaredLogger
	subBuffer   int

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[uint64]chan Event
	nextSub uint64
	closed  bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs an idle Controller backed by client.
func New(client omdb.Client, opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = defaultSubscriberBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		client:      client,
		timeout:     opts.Timeout,
		settleDelay: opts.SettleDelay,
		observers:   opts.Observers,
		logger:      logger.OrNop(opts.Logger),
		subBuffer:   opts.SubscriberBuffer,
		snap:        Snapshot{State: domain.StateIdle, UpdatedAt: time.Now().UTC()},
		subs:        make(map[uint64]chan Event),
		baseCtx:     ctx,
		cancel:      cancel,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Lookup runs one lookup for rawID until it settles and returns the settled
// snapshot. A blank id raises an InvalidInput alert and is returned as a
// *Failure without touching state or the network.
func (c *Controller) Lookup(ctx context.Context, rawID string) (Snapshot, error) {
	id, err := c.validate(rawID)
	if err != nil {
		return c.Snapshot(), err
	}
	attempt, started := c.begin(id)
	return c.run(ctx, id, attempt, started), nil
}

// Submit is the screen's submit event: input is validated and the lookup
// enters InFlight synchronously, the rest of the lifecycle runs in the
// background. The returned snapshot is the InFlight one.
func (c *Controller) Submit(rawID string) (Snapshot, error) {
	c.mu.Lock()
	if c.closed {
		snap := c.snap
		c.mu.Unlock()
		return snap, ErrClosed
	}
	c.wg.Add(1)
	c.mu.Unlock()

	id, err := c.validate(rawID)
	if err != nil {
		c.wg.Done()
		return c.Snapshot(), err
	}
	attempt, started := c.begin(id)
	snap := c.Snapshot()

	go func() {
		defer c.wg.Done()
		c.run(c.baseCtx, id, attempt, started)
	}()
	return snap, nil
}

// Subscribe registers for state changes and alerts. Slow subscribers miss
// events rather than stall lookups. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, c.subBuffer)

	c.mu.Lock()
	key := c.nextSub
	c.nextSub++
	c.subs[key] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, key)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports how many subscriptions are open.
func (c *Controller) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Close cancels lookups started by Submit and waits for them to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) validate(rawID string) (string, error) {
	id := strings.TrimSpace(rawID)
	if id != "" {
		return id, nil
	}
	f := invalidInput()
	alert := alertFor(f, "")
	c.logger.Infow("lookup: rejected blank id")
	c.mu.RLock()
	c.broadcast(Event{Alert: &alert})
	c.mu.RUnlock()
	return "", f
}

func (c *Controller) begin(id string) (string, time.Time) {
	attempt := uuid.NewString()
	started := time.Now()
	c.publish(Snapshot{State: domain.StateInFlight, ID: id, AttemptID: attempt})
	c.logger.Debugw("lookup: in flight", "id", id, "attempt", attempt)
	return attempt, started
}

func (c *Controller) run(ctx context.Context, id, attempt string, started time.Time) Snapshot {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	payload, err := c.client.Fetch(reqCtx, id)
	cancel()

	if err == nil {
		err = sleep(ctx, c.settleDelay)
	}

	next := Snapshot{ID: id, AttemptID: attempt}
	switch {
	case err != nil && omdb.IsTimeout(err):
		next.State, next.Failure = domain.StateFailed, timedOut(err)
	case err != nil:
		next.State, next.Failure = domain.StateFailed, transportError(err)
	case payload == nil:
		next.State, next.Failure = domain.StateFailed, transportError(nil)
	case payload.Found():
		next.State, next.Record = domain.StateSucceeded, payload.Record()
	default:
		next.State, next.Failure = domain.StateFailed, notFound(payload.Error)
	}

	settled := c.publish(next)
	elapsed := time.Since(started)
	if next.Failure != nil {
		alert := alertFor(next.Failure, id)
		c.mu.RLock()
		c.broadcast(Event{Alert: &alert})
		c.mu.RUnlock()
		c.logger.Infow("lookup: failed", "id", id, "attempt", attempt, "kind", next.Failure.Kind, "elapsed", elapsed, "error", next.Failure.Err)
	} else {
		c.logger.Infow("lookup: succeeded", "id", id, "attempt", attempt, "title", next.Record.Title, "elapsed", elapsed)
	}

	outcome := Outcome{
		ID:        id,
		AttemptID: attempt,
		State:     next.State,
		Record:    next.Record,
		Failure:   next.Failure,
		StartedAt: started,
		Elapsed:   elapsed,
	}
	obsCtx := context.WithoutCancel(ctx)
	for _, o := range c.observers {
		o.Observe(obsCtx, outcome)
	}
	return settled
}

// publish replaces the snapshot wholesale and fans it out.
func (c *Controller) publish(next Snapshot) Snapshot {
	next.UpdatedAt = time.Now().UTC()
	c.mu.Lock()
	c.snap = next
	c.broadcast(Event{Snapshot: &next})
	c.mu.Unlock()
	return next
}

// broadcast must be called with c.mu held.
func (c *Controller) broadcast(ev Event) {
	for key, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.logger.Warnw("lookup: dropping event for slow subscriber", "subscriber", key)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
