// Package validation runs per-step and whole-record rule sets against a
// wizard draft.
package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
)

var ErrUnknownStep = errors.New("unknown step")

// Input is everything a rule may look at.
type Input[M any] struct {
	Model       M
	Attachments *attachment.Set
	Now         time.Time
}

type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Failures is an ordered list of rule violations. An empty list means valid.
type Failures []Failure

func (f Failures) Error() string {
	return strings.Join(f.Messages(), "; ")
}

func (f Failures) Messages() []string {
	out := make([]string, len(f))
	for i, fl := range f {
		out[i] = fl.Message
	}
	return out
}

// Fields lists the failing field names, in order, without repeats.
func (f Failures) Fields() []string {
	seen := make(map[string]bool, len(f))
	var out []string
	for _, fl := range f {
		if seen[fl.Field] {
			continue
		}
		seen[fl.Field] = true
		out = append(out, fl.Field)
	}
	return out
}

// Err returns f as an error, or nil when f is empty.
func (f Failures) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Rule checks one constraint and returns every violation it finds.
type Rule[M any] interface {
	Check(in Input[M]) Failures
}

// RuleFunc adapts a function to Rule.
type RuleFunc[M any] func(in Input[M]) Failures

func (f RuleFunc[M]) Check(in Input[M]) Failures { return f(in) }
