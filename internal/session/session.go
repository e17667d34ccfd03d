// Package session holds the wizard sessions served by wizard-api.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/autosave"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"github.com/Eursukkul/competition-portal/pkg/wizard"
)

var (
	ErrNotFound    = errors.New("wizard session not found")
	ErrUnknownKind = errors.New("unknown wizard kind")
	ErrNoAutosave  = errors.New("wizard has no autosave")
	ErrNoDefaults  = errors.New("wizard has no recommended defaults")
)

type Kind string

const (
	KindCompetition  Kind = "competition"
	KindRegistration Kind = "registration"
	KindProfile      Kind = "profile"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCompetition, KindRegistration, KindProfile:
		return k, nil
	}
	return "", ErrUnknownKind
}

// Wizard is a wizard session with its draft type erased, so sessions of
// every kind can share one store and one HTTP surface.
type Wizard interface {
	Kind() Kind
	View() wizard.View
	Draft() (json.RawMessage, error)
	// Replace swaps the draft for the decoded body.
	Replace(ctx context.Context, body []byte) error
	Advance() (validation.Failures, error)
	Retreat() error
	JumpTo(step int) error
	Attach(slot string, f attachment.File) error
	Detach(slot string, index int) error
	Submit(ctx context.Context) (submission.Result, error)
	// ApplyDefaults fills the draft with the recommended values.
	ApplyDefaults() error
	Autosave() (autosave.Status, error)
	Close()
}

// decodeFunc replaces m with body.
type decodeFunc[M any] func(ctx context.Context, m M, body []byte) error

// prepareFunc runs before the draft is locked for a replace.
type prepareFunc func(ctx context.Context, body []byte)

type session[M any] struct {
	kind     Kind
	ctrl     *wizard.Controller[M]
	decode   decodeFunc[M]
	prepare  prepareFunc
	defaults func(m M) error
	saver    *autosave.Coordinator
}

func (s *session[M]) Kind() Kind        { return s.kind }
func (s *session[M]) View() wizard.View { return s.ctrl.View() }

func (s *session[M]) Draft() (json.RawMessage, error) {
	var (
		b   []byte
		err error
	)
	s.ctrl.Read(func(m M, _ *attachment.Set) {
		b, err = json.Marshal(m)
	})
	return b, err
}

func (s *session[M]) Replace(ctx context.Context, body []byte) error {
	if s.prepare != nil {
		s.prepare(ctx, body)
	}
	return s.ctrl.Update(func(m M) error {
		return s.decode(ctx, m, body)
	})
}

func (s *session[M]) Advance() (validation.Failures, error) { return s.ctrl.Advance() }
func (s *session[M]) Retreat() error                         { return s.ctrl.Retreat() }
func (s *session[M]) JumpTo(step int) error                  { return s.ctrl.JumpTo(step) }

func (s *session[M]) Attach(slot string, f attachment.File) error {
	return s.ctrl.Attach(slot, f)
}

func (s *session[M]) Detach(slot string, index int) error {
	return s.ctrl.Detach(slot, index)
}

// Submit pauses autosave for the final write so a staged draft cannot
// reappear after the record is published. Autosave resumes if the
// submission does not go through.
func (s *session[M]) Submit(ctx context.Context) (submission.Result, error) {
	if s.saver == nil {
		return s.ctrl.SubmitFinal(ctx)
	}
	if err := s.saver.Pause(ctx); err != nil {
		s.saver.Resume()
		return submission.Result{}, err
	}
	res, err := s.ctrl.SubmitFinal(ctx)
	if err != nil || !res.OK {
		s.saver.Resume()
		return res, err
	}
	s.saver.Stop()
	return res, nil
}

func (s *session[M]) ApplyDefaults() error {
	if s.defaults == nil {
		return ErrNoDefaults
	}
	return s.ctrl.Update(s.defaults)
}

func (s *session[M]) Autosave() (autosave.Status, error) {
	if s.saver == nil {
		return autosave.Status{}, ErrNoAutosave
	}
	return s.saver.Status(), nil
}

func (s *session[M]) Close() {
	if s.saver != nil {
		s.saver.Stop()
	}
}
