// Package savecoord decides whether and when a freshly fetched transcript
// is auto-saved to the user's history. Each run checks for an existing
// record, waits out a quiet period, then issues one idempotent upsert.
// Correctness across writers rests entirely on the store's uniqueness
// constraint; the coordinator only avoids needless writes.
package savecoord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rtzll/transcriptgrab/internal/logger"
	"github.com/rtzll/transcriptgrab/internal/store"
)

// DefaultDelay is the quiet period between a successful check and the save.
const DefaultDelay = 2500 * time.Millisecond

const saveTimeout = 15 * time.Second

// State of a coordinator run.
type State int

const (
	Idle State = iota
	Checking
	// Pending means the check found nothing and the save is waiting out
	// the debounce delay.
	Pending
	Duplicate
	Saving
	Saved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	case Pending:
		return "pending"
	case Duplicate:
		return "duplicate"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == Duplicate || s == Saved || s == Failed
}

// Gateway is the persistence side of the protocol. *store.Store satisfies
// it directly; the companion uses an HTTP implementation.
type Gateway interface {
	ExistsFor(ctx context.Context, userID, videoID string) (bool, string, error)
	Upsert(ctx context.Context, in store.TranscriptInput) (store.UpsertResult, error)
}

// Snapshot is the externally visible state of a run.
type Snapshot struct {
	State    State
	VideoID  string
	RecordID string
	// Inserted is true only when this run's upsert created the record.
	Inserted bool
	Err      error
}

// Coordinator drives one run at a time. Starting a different video tears
// down the previous run first.
type Coordinator struct {
	gw       Gateway
	delay    time.Duration
	log      *logger.Logger
	onChange func(Snapshot)

	mu     sync.Mutex
	snap   Snapshot
	gen    int
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Coordinator)

func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.delay = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithOnChange registers an observer called after every transition, from
// the run's goroutine.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

func New(gw Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:    gw,
		delay: DefaultDelay,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a run for in.VideoID. It is a no-op when a run for the same
// video already left Idle. ctx bounds the run; cancelling it is the same
// as Stop.
func (c *Coordinator) Start(ctx context.Context, in store.TranscriptInput) {
	c.mu.Lock()
	if c.snap.VideoID != "" && c.snap.VideoID == in.VideoID {
		c.mu.Unlock()
		return
	}
	c.teardownLocked()

	runCtx, cancel := context.WithCancel(ctx)
	c.gen++
	c.cancel = cancel
	c.done = make(chan struct{})
	c.snap = Snapshot{State: Idle, VideoID: in.VideoID}
	gen, done := c.gen, c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.run(runCtx, gen, in)
	}()
}

// Stop tears down the current run. A pending save is never issued and no
// further transition is reported. Stop waits for the run goroutine.
func (c *Coordinator) Stop() {
	<-c.Detach()
}

// Detach tears down the current run like Stop without waiting for it. The
// returned channel is closed once the run goroutine has exited.
func (c *Coordinator) Detach() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := c.teardownLocked()
	c.snap = Snapshot{}
	if done == nil {
		done = make(chan struct{})
		close(done)
	}
	return done
}

// Wait blocks until the current run, if any, has finished.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *Coordinator) teardownLocked() chan struct{} {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	// Invalidate transitions from the old run.
	c.gen++
	done := c.done
	c.done = nil
	return done
}

func (c *Coordinator) run(ctx context.Context, gen int, in store.TranscriptInput) {
	log := c.log.With("video_id", in.VideoID)

	if !c.transition(ctx, gen, Snapshot{State: Checking}) {
		return
	}

	exists, recordID, err := c.gw.ExistsFor(ctx, in.UserID, in.VideoID)
	if ctx.Err() != nil {
		return
	}
	switch {
	case err != nil:
		// A failed check proves nothing; the upsert is idempotent anyway.
		log.Warn("duplicate check failed, saving anyway", "error", err)
	case exists:
		c.transition(ctx, gen, Snapshot{State: Duplicate, RecordID: recordID})
		return
	}

	if !c.transition(ctx, gen, Snapshot{State: Pending}) {
		return
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		log.Debug("auto-save cancelled during debounce")
		return
	case <-timer.C:
	}

	if !c.transition(ctx, gen, Snapshot{State: Saving}) {
		return
	}

	// The upsert, once issued, completes even if the run is torn down.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	res, err := c.gw.Upsert(saveCtx, in)
	if err != nil {
		log.Error("auto-save failed", "error", err)
		c.transition(ctx, gen, Snapshot{State: Failed, Err: err})
		return
	}
	if !res.Inserted {
		log.Debug("transcript already saved by another writer", "id", res.ID)
	}
	c.transition(ctx, gen, Snapshot{State: Saved, RecordID: res.ID, Inserted: res.Inserted})
}

// transition records next unless the run was superseded or torn down.
func (c *Coordinator) transition(ctx context.Context, gen int, next Snapshot) bool {
	c.mu.Lock()
	if gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		return false
	}
	next.VideoID = c.snap.VideoID
	c.snap = next
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(next)
	}
	return true
}
