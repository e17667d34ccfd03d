package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Eursukkul/competition-portal/internal/catalog"
	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/autosave"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/metrics"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/Eursukkul/competition-portal/pkg/wizard"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrEditUnsupported = errors.New("this wizard cannot edit existing records")

// Portal is the persistence API as seen by wizard sessions.
type Portal interface {
	submission.Collaborator
	Fetch(ctx context.Context, path string, out any) error
}

// PermissionFunc reports whether role may author kind.
type PermissionFunc func(role string, kind Kind) bool

// RolePermissions is the default PermissionFunc: organizers author
// competitions, athletes and organizers author registrations, coaches and
// judges author their own profiles.
func RolePermissions(role string, kind Kind) bool {
	switch kind {
	case KindCompetition:
		return role == "organizer"
	case KindRegistration:
		return role == "athlete" || role == "organizer"
	case KindProfile:
		return role == string(draft.RoleCoach) || role == string(draft.RoleJudge)
	}
	return false
}

type Request struct {
	Kind Kind
	Role string
	// EditID hydrates the draft from an existing record.
	EditID string
}

type Factory struct {
	Portal         Portal
	Catalog        *catalog.Catalog
	Permitted      PermissionFunc
	Clock          clock.Clock
	AutosaveWindow time.Duration
	DefaultFees    draft.Defaults
	DefaultCaps    draft.Defaults
	// AfterFunc schedules autosaves; nil uses time.AfterFunc.
	AfterFunc autosave.AfterFunc
	Logger    *zap.Logger
}

func (f *Factory) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *Factory) permitted(req Request) bool {
	if f.Permitted == nil {
		return RolePermissions(req.Role, req.Kind)
	}
	return f.Permitted(req.Role, req.Kind)
}

func observer(kind Kind) wizard.Observer {
	return wizard.Observer{
		Advanced: func(step int, ok bool) {
			metrics.StepAdvances.WithLabelValues(string(kind), strconv.Itoa(step), metrics.Result(ok)).Inc()
		},
		Submitted: func(enc submission.Encoding, ok bool) {
			metrics.Submissions.WithLabelValues(string(kind), string(enc), metrics.Result(ok)).Inc()
		},
	}
}

// New opens a wizard session of req.Kind.
func (f *Factory) New(ctx context.Context, req Request) (Wizard, error) {
	if _, err := ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}
	if !f.permitted(req) {
		return nil, wizard.ErrNotPermitted
	}
	switch req.Kind {
	case KindCompetition:
		return f.competition(ctx, req)
	case KindRegistration:
		return f.registration(req)
	default:
		return f.profile(ctx, req)
	}
}

func replaceJSON[M any](_ context.Context, m M, body []byte) error {
	return json.Unmarshal(body, m)
}

func (f *Factory) competition(ctx context.Context, req Request) (Wizard, error) {
	model := draft.NewCompetition()
	target := submission.Target{Method: http.MethodPost, Path: "/api/v1/competitions"}
	if req.EditID != "" {
		path := "/api/v1/competitions/" + req.EditID
		if err := f.Portal.Fetch(ctx, path, model); err != nil {
			return nil, fmt.Errorf("load competition %s: %w", req.EditID, err)
		}
		target = submission.Target{Method: http.MethodPut, Path: path}
	}

	ctrl, err := wizard.New(wizard.Config[*draft.Competition]{
		Name:         string(KindCompetition),
		Permitted:    true,
		Model:        model,
		Attachments:  draft.CompetitionSlots(),
		Engine:       draft.CompetitionEngine(f.Clock),
		Collaborator: f.Portal,
		Target:       target,
		Observer:     observer(KindCompetition),
		Logger:       f.logger(),
	})
	if err != nil {
		return nil, err
	}
	return &session[*draft.Competition]{
		kind:   KindCompetition,
		ctrl:   ctrl,
		decode: replaceJSON[*draft.Competition],
		defaults: func(c *draft.Competition) error {
			if err := c.ApplyRecommendedFees(f.DefaultFees); err != nil {
				return err
			}
			return c.ApplyRecommendedCaps(f.DefaultCaps)
		},
	}, nil
}

func (f *Factory) registration(req Request) (Wizard, error) {
	if req.EditID != "" {
		return nil, ErrEditUnsupported
	}

	var (
		lookup  draft.OfferLookup
		prepare prepareFunc
	)
	if f.Catalog != nil {
		lookup = f.Catalog.Lookup
		// the fetch runs outside the draft lock so a slow portal does not
		// stall the session
		prepare = func(ctx context.Context, body []byte) {
			var head struct {
				CompetitionID uint `json:"competition_id"`
			}
			if json.Unmarshal(body, &head) != nil {
				return
			}
			// a miss leaves the offer check to report the competition
			if err := f.Catalog.Ensure(ctx, head.CompetitionID); err != nil {
				f.logger().Info("competition lookup failed", zap.Uint("competition_id", head.CompetitionID), zap.Error(err))
			}
		}
	}

	ctrl, err := wizard.New(wizard.Config[*draft.Registration]{
		Name:         string(KindRegistration),
		Permitted:    true,
		Model:        draft.NewRegistration(),
		Attachments:  draft.RegistrationSlots(),
		Engine:       draft.RegistrationEngineWith(f.Clock, lookup),
		Collaborator: f.Portal,
		Target:       submission.Target{Method: http.MethodPost, Path: "/api/v1/registrations"},
		Observer:     observer(KindRegistration),
		Logger:       f.logger(),
	})
	if err != nil {
		return nil, err
	}
	return &session[*draft.Registration]{
		kind:    KindRegistration,
		ctrl:    ctrl,
		decode:  replaceJSON[*draft.Registration],
		prepare: prepare,
	}, nil
}

// profile sessions autosave: every edit restarts the idle window and the
// draft is staged with the portal API when it expires.
func (f *Factory) profile(ctx context.Context, req Request) (Wizard, error) {
	id := req.EditID
	model := draft.NewProfile(draft.Role(req.Role))
	if id != "" {
		if err := f.Portal.Fetch(ctx, "/api/v1/profiles/"+id+"/draft", model); err != nil {
			return nil, fmt.Errorf("load profile %s: %w", id, err)
		}
	} else {
		id = uuid.NewString()
	}
	model.ID = id
	path := "/api/v1/profiles/" + id

	var ctrl *wizard.Controller[*draft.Profile]
	saver := autosave.New(autosave.Options{
		Window:    f.AutosaveWindow,
		AfterFunc: f.AfterFunc,
		Logger:    f.logger(),
		Save: func(ctx context.Context) error {
			var snapshot *draft.Profile
			ctrl.Read(func(p *draft.Profile, _ *attachment.Set) { snapshot = p.Clone() })
			return f.stage(ctx, path+"/draft", snapshot)
		},
		Done: func(err error) {
			metrics.Autosaves.WithLabelValues(metrics.Result(err == nil)).Inc()
		},
	})

	ctrl, err := wizard.New(wizard.Config[*draft.Profile]{
		Name:         string(KindProfile),
		Permitted:    true,
		Model:        model,
		Attachments:  draft.ProfileSlots(),
		Engine:       draft.ProfileEngine(f.Clock),
		Collaborator: f.Portal,
		Target:       submission.Target{Method: http.MethodPut, Path: path},
		OnChange:     saver.Touch,
		Observer:     observer(KindProfile),
		Logger:       f.logger(),
	})
	if err != nil {
		return nil, err
	}

	decode := func(ctx context.Context, p *draft.Profile, body []byte) error {
		if err := json.Unmarshal(body, p); err != nil {
			return err
		}
		p.ID = id
		return nil
	}
	return &session[*draft.Profile]{kind: KindProfile, ctrl: ctrl, decode: decode, saver: saver}, nil
}

func (f *Factory) stage(ctx context.Context, path string, p *draft.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res := f.Portal.Submit(ctx, submission.Target{Method: http.MethodPut, Path: path}, submission.Plain{Record: b})
	if !res.OK {
		return errors.New(res.Error)
	}
	return nil
}
