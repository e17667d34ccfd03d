// Package wizard drives a multi-step authoring flow over one draft record.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"go.uber.org/zap"
)

var (
	ErrNotPermitted   = errors.New("not permitted to author this wizard")
	ErrStepOutOfRange = errors.New("step out of range")
	ErrSubmitting     = errors.New("submission in progress")
	ErrFinished       = errors.New("wizard already submitted")
)

type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
)

// Encoder builds the wire payload for a draft.
type Encoder[M any] func(m M, set *attachment.Set) (submission.Payload, error)

// Observer receives navigation and submission outcomes. Any field may be nil.
type Observer struct {
	Advanced  func(step int, ok bool)
	Submitted func(encoding submission.Encoding, ok bool)
}

type Config[M any] struct {
	Name         string
	Permitted    bool
	Model        M
	Attachments  *attachment.Set
	Engine       *validation.Engine[M]
	Encode       Encoder[M]
	Collaborator submission.Collaborator
	Target       submission.Target
	// OnChange runs after every Update, outside the controller lock.
	OnChange func()
	Observer Observer
	Logger   *zap.Logger
}

// Controller owns the step position of one wizard session.
type Controller[M any] struct {
	mu sync.Mutex

	name         string
	model        M
	attachments  *attachment.Set
	engine       *validation.Engine[M]
	encode       Encoder[M]
	collaborator submission.Collaborator
	target       submission.Target
	onChange     func()
	observer     Observer
	logger       *zap.Logger

	step     int
	complete map[int]bool
	errText  string
	state    State
	result   submission.Result
}

func New[M any](cfg Config[M]) (*Controller[M], error) {
	if !cfg.Permitted {
		return nil, ErrNotPermitted
	}
	if cfg.Engine == nil || cfg.Engine.Len() == 0 {
		return nil, errors.New("wizard: engine with at least one step is required")
	}
	if cfg.Collaborator == nil {
		return nil, errors.New("wizard: collaborator is required")
	}
	if cfg.Encode == nil {
		cfg.Encode = func(m M, set *attachment.Set) (submission.Payload, error) {
			return submission.Encode(m, set)
		}
	}
	if cfg.Attachments == nil {
		cfg.Attachments = attachment.NewSet()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Controller[M]{
		name:         cfg.Name,
		model:        cfg.Model,
		attachments:  cfg.Attachments,
		engine:       cfg.Engine,
		encode:       cfg.Encode,
		collaborator: cfg.Collaborator,
		target:       cfg.Target,
		onChange:     cfg.OnChange,
		observer:     cfg.Observer,
		logger:       cfg.Logger.With(zap.String("component", "wizard"), zap.String("wizard", cfg.Name)),
		step:         1,
		complete:     make(map[int]bool),
		state:        StateEditing,
	}, nil
}

func (c *Controller[M]) navigable() error {
	switch c.state {
	case StateSubmitting:
		return ErrSubmitting
	case StateDone:
		return ErrFinished
	}
	return nil
}

// Advance validates the current step. On failure the step is unchanged and
// every failure is returned; on success the step is marked complete and the
// wizard moves forward, staying put on the last step.
func (c *Controller[M]) Advance() (validation.Failures, error) {
	c.mu.Lock()
	if err := c.navigable(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	step := c.step
	failures, err := c.engine.ValidateStep(step, c.model, c.attachments)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if len(failures) > 0 {
		c.errText = failures.Error()
		c.mu.Unlock()
		c.logger.Debug("step blocked", zap.Int("step", step), zap.Strings("fields", failures.Fields()))
		c.notifyAdvance(step, false)
		return failures, nil
	}
	c.complete[step] = true
	if c.step < c.engine.Len() {
		c.step++
	}
	c.errText = ""
	c.mu.Unlock()

	c.notifyAdvance(step, true)
	return nil, nil
}

// Retreat moves back one step without validating.
func (c *Controller[M]) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigable(); err != nil {
		return err
	}
	if c.step > 1 {
		c.step--
	}
	c.errText = ""
	return nil
}

// JumpTo moves to any step. Intermediate steps are not validated here;
// SubmitFinal re-checks the whole record.
func (c *Controller[M]) JumpTo(step int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigable(); err != nil {
		return err
	}
	if step < 1 || step > c.engine.Len() {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, step)
	}
	c.step = step
	c.errText = ""
	return nil
}

// Update applies a field edit to the draft.
func (c *Controller[M]) Update(edit func(m M) error) error {
	c.mu.Lock()
	if err := c.navigable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := edit(c.model); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange()
	}
	return nil
}

// Attach stores a file. An oversized file leaves the slot as it was.
func (c *Controller[M]) Attach(slot string, f attachment.File) error {
	c.mu.Lock()
	if err := c.navigable(); err != nil {
		c.mu.Unlock()
		return err
	}
	err := c.attachments.Accept(slot, f)
	c.mu.Unlock()
	if err != nil {
		c.logger.Info("attachment rejected", zap.String("slot", slot), zap.Error(err))
		return err
	}
	if c.onChange != nil {
		c.onChange()
	}
	return nil
}

func (c *Controller[M]) Detach(slot string, index int) error {
	c.mu.Lock()
	if err := c.navigable(); err != nil {
		c.mu.Unlock()
		return err
	}
	err := c.attachments.Remove(slot, index)
	c.mu.Unlock()
	if err == nil && c.onChange != nil {
		c.onChange()
	}
	return err
}

// SubmitFinal validates the whole record and, only if it is clean, encodes
// and sends it. Navigation is refused while the call is in flight. On
// failure the wizard returns to the last step with the error kept and the
// draft untouched.
func (c *Controller[M]) SubmitFinal(ctx context.Context) (submission.Result, error) {
	c.mu.Lock()
	if err := c.navigable(); err != nil {
		c.mu.Unlock()
		return submission.Result{}, err
	}
	if failures := c.engine.ValidateAll(c.model, c.attachments); len(failures) > 0 {
		c.errText = failures.Error()
		c.mu.Unlock()
		return submission.Result{}, failures
	}
	payload, err := c.encode(c.model, c.attachments)
	if err != nil {
		c.errText = err.Error()
		c.mu.Unlock()
		return submission.Result{}, fmt.Errorf("encode submission: %w", err)
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	res := c.collaborator.Submit(ctx, c.target, payload)

	c.mu.Lock()
	c.result = res
	if res.OK {
		c.state = StateDone
		c.errText = ""
		for i := 1; i <= c.engine.Len(); i++ {
			c.complete[i] = true
		}
	} else {
		c.state = StateEditing
		c.step = c.engine.Len()
		c.errText = res.Error
	}
	c.mu.Unlock()

	c.logger.Info("submission finished",
		zap.String("encoding", string(payload.Encoding())),
		zap.Bool("ok", res.OK),
		zap.Int("status", res.Status))
	if c.observer.Submitted != nil {
		c.observer.Submitted(payload.Encoding(), res.OK)
	}
	return res, nil
}

func (c *Controller[M]) notifyAdvance(step int, ok bool) {
	if c.observer.Advanced != nil {
		c.observer.Advanced(step, ok)
	}
}

func (c *Controller[M]) Name() string { return c.name }

func (c *Controller[M]) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller[M]) Completed(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.complete[step]
}

func (c *Controller[M]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

func (c *Controller[M]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Read gives fn the draft and attachments under the controller lock.
func (c *Controller[M]) Read(fn func(m M, set *attachment.Set)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.model, c.attachments)
}

// StepInfo describes one step for display.
type StepInfo struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
}

// View is a point-in-time copy of the controller state.
type View struct {
	Name        string                       `json:"name"`
	Step        int                          `json:"step"`
	Steps       []StepInfo                   `json:"steps"`
	State       State                        `json:"state"`
	Error       string                       `json:"error,omitempty"`
	Attachments map[string][]attachment.File `json:"attachments"`
}

func (c *Controller[M]) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	steps := c.engine.Steps()
	infos := make([]StepInfo, len(steps))
	for i, s := range steps {
		infos[i] = StepInfo{ID: s.ID, Title: s.Title, Complete: c.complete[s.ID]}
	}
	return View{
		Name:        c.name,
		Step:        c.step,
		Steps:       infos,
		State:       c.state,
		Error:       c.errText,
		Attachments: c.attachments.Summary(),
	}
}

// Result returns the last collaborator response.
func (c *Controller[M]) Result() submission.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}
