package validation

import (
	"fmt"
	"time"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/clock"
)

// Step is one wizard page and the rules that gate leaving it.
type Step[M any] struct {
	ID    int
	Title string
	Rules []Rule[M]
}

// Engine evaluates the rules of a wizard. Steps are numbered from 1.
type Engine[M any] struct {
	steps  []Step[M]
	record []Rule[M]
	clock  clock.Clock
}

// NewEngine builds an engine. Step IDs must run 1..len(steps) in order.
// Record rules belong to no step and only run in ValidateAll.
func NewEngine[M any](clk clock.Clock, steps []Step[M], record ...Rule[M]) *Engine[M] {
	for i, s := range steps {
		if s.ID != i+1 {
			panic(fmt.Sprintf("validation: step %q has id %d, want %d", s.Title, s.ID, i+1))
		}
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Engine[M]{steps: steps, record: record, clock: clk}
}

func (e *Engine[M]) Steps() []Step[M] {
	out := make([]Step[M], len(e.steps))
	copy(out, e.steps)
	return out
}

func (e *Engine[M]) Len() int { return len(e.steps) }

func (e *Engine[M]) Now() time.Time { return e.clock.Now() }

func (e *Engine[M]) input(m M, set *attachment.Set) Input[M] {
	return Input[M]{Model: m, Attachments: set, Now: e.clock.Now()}
}

// ValidateStep runs every rule of one step and returns all failures.
func (e *Engine[M]) ValidateStep(id int, m M, set *attachment.Set) (Failures, error) {
	if id < 1 || id > len(e.steps) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, id)
	}
	return run(e.steps[id-1].Rules, e.input(m, set)), nil
}

// ValidateAll runs each step's rules once, in step order, followed by the
// record rules.
func (e *Engine[M]) ValidateAll(m M, set *attachment.Set) Failures {
	in := e.input(m, set)
	var out Failures
	for _, s := range e.steps {
		out = append(out, run(s.Rules, in)...)
	}
	return append(out, run(e.record, in)...)
}

func run[M any](rules []Rule[M], in Input[M]) Failures {
	var out Failures
	for _, r := range rules {
		out = append(out, r.Check(in)...)
	}
	return out
}
