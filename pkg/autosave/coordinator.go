// Package autosave debounces draft edits into background saves.
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer is the part of *time.Timer the coordinator needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Saver persists the current draft.
type Saver func(ctx context.Context) error

type Status struct {
	InFlight    bool      `json:"in_flight"`
	Pending     bool      `json:"pending"`
	LastSavedAt time.Time `json:"last_saved_at,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Saves       int       `json:"saves"`
}

type Options struct {
	Window    time.Duration
	Save      Saver
	AfterFunc AfterFunc
	Now       func() time.Time
	// Done runs after every save attempt.
	Done    func(err error)
	Timeout time.Duration
	Logger  *zap.Logger
}

// Coordinator saves at most once per idle window and never has two saves
// in flight. An edit made during a save queues one follow-up save.
type Coordinator struct {
	mu sync.Mutex

	window    time.Duration
	save      Saver
	afterFunc AfterFunc
	now       func() time.Time
	done      func(error)
	timeout   time.Duration
	logger    *zap.Logger

	timer    Timer
	gen      uint64
	dirty    bool
	inFlight bool
	// idle is closed when the running save returns
	idle     chan struct{}
	queued   bool
	stopped  bool
	status   Status
}

func New(opts Options) *Coordinator {
	if opts.AfterFunc == nil {
		opts.AfterFunc = systemAfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator{
		window:    opts.Window,
		save:      opts.Save,
		afterFunc: opts.AfterFunc,
		now:       opts.Now,
		done:      opts.Done,
		timeout:   opts.Timeout,
		logger:    opts.Logger.With(zap.String("component", "autosave")),
	}
}

// Touch records an edit and restarts the idle window.
func (c *Coordinator) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
	if c.stopped {
		return
	}
	if c.inFlight {
		c.queued = true
		return
	}
	c.scheduleLocked()
}

func (c *Coordinator) scheduleLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.afterFunc(c.window, func() { c.fire(gen) })
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		// superseded by a later edit
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.stopped || c.inFlight || !c.dirty {
		c.mu.Unlock()
		return
	}
	c.startLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_ = c.run(ctx)
}

// Flush saves now if there are unsaved edits and no save is running.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight || !c.dirty {
		c.mu.Unlock()
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.startLocked()
	c.mu.Unlock()

	return c.run(ctx)
}

func (c *Coordinator) startLocked() {
	c.inFlight = true
	c.dirty = false
	c.idle = make(chan struct{})
}

func (c *Coordinator) run(ctx context.Context) error {
	err := c.save(ctx)

	c.mu.Lock()
	c.inFlight = false
	close(c.idle)
	c.status.Saves++
	if err != nil {
		c.status.LastError = err.Error()
		// unsaved until the next edit or Flush
		c.dirty = true
		c.logger.Warn("autosave failed", zap.Error(err))
	} else {
		c.status.LastError = ""
		c.status.LastSavedAt = c.now()
		c.logger.Debug("autosaved")
	}
	if c.queued && !c.stopped {
		c.scheduleLocked()
	}
	c.queued = false
	c.mu.Unlock()

	if c.done != nil {
		c.done(err)
	}
	return err
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.status
	s.InFlight = c.inFlight
	s.Pending = c.dirty
	return s
}

// Stop cancels any scheduled save. A save already running finishes.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Pause stops scheduling saves and waits for a running save to return.
// Edits made while paused are kept pending until Resume.
func (c *Coordinator) Pause(ctx context.Context) error {
	c.mu.Lock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	var idle chan struct{}
	if c.inFlight {
		idle = c.idle
	}
	c.mu.Unlock()

	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resume undoes Pause and schedules a save for pending edits.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = false
	if c.dirty && !c.inFlight {
		c.scheduleLocked()
	}
}
