package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/autosave"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"github.com/Eursukkul/competition-portal/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWizard struct {
	closed bool
}

func (s *stubWizard) Kind() Kind                                            { return KindCompetition }
func (s *stubWizard) View() wizard.View                                     { return wizard.View{} }
func (s *stubWizard) Draft() (json.RawMessage, error)                       { return nil, nil }
func (s *stubWizard) Replace(ctx context.Context, body []byte) error        { return nil }
func (s *stubWizard) Advance() (validation.Failures, error)                 { return nil, nil }
func (s *stubWizard) Retreat() error                                        { return nil }
func (s *stubWizard) JumpTo(step int) error                                 { return nil }
func (s *stubWizard) Attach(slot string, f attachment.File) error           { return nil }
func (s *stubWizard) Detach(slot string, index int) error                   { return nil }
func (s *stubWizard) Submit(ctx context.Context) (submission.Result, error) { return submission.Result{}, nil }
func (s *stubWizard) ApplyDefaults() error                                  { return nil }
func (s *stubWizard) Autosave() (autosave.Status, error)                    { return autosave.Status{}, nil }
func (s *stubWizard) Close()                                                { s.closed = true }

func TestStore_PutGetDelete(t *testing.T) {
	st := NewStore(time.Hour, nil)
	w := &stubWizard{}

	id := st.Put(w)
	got, err := st.Get(id)
	require.NoError(t, err)
	assert.Same(t, w, got)

	require.NoError(t, st.Delete(id))
	assert.True(t, w.closed)

	_, err = st.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(id), ErrNotFound)
}

func TestStore_SweepDropsIdle(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	st := NewStore(time.Hour, nil)
	st.now = func() time.Time { return now }

	idle, busy := &stubWizard{}, &stubWizard{}
	idleID := st.Put(idle)
	busyID := st.Put(busy)

	now = now.Add(50 * time.Minute)
	_, err := st.Get(busyID)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	assert.True(t, idle.closed)
	assert.False(t, busy.closed)

	_, err = st.Get(idleID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, st.Len())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("profile")
	require.NoError(t, err)
	assert.Equal(t, KindProfile, k)

	_, err = ParseKind("survey")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
