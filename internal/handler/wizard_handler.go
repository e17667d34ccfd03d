package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/internal/session"
	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/metrics"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"github.com/Eursukkul/competition-portal/pkg/wizard"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderRole carries the caller's portal role.
const HeaderRole = "X-Portal-Role"

// WizardOpener opens new wizard sessions.
type WizardOpener interface {
	New(ctx context.Context, req session.Request) (session.Wizard, error)
}

type WizardHandler struct {
	opener WizardOpener
	store  *session.Store
	logger *zap.Logger
}

func NewWizardHandler(opener WizardOpener, store *session.Store, logger *zap.Logger) *WizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardHandler{opener: opener, store: store, logger: logger}
}

func (h *WizardHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:kind", h.Open)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Close)
	g.PUT("/:id/draft", h.Replace)
	g.POST("/:id/advance", h.Advance)
	g.POST("/:id/retreat", h.Retreat)
	g.POST("/:id/jump/:step", h.JumpTo)
	g.POST("/:id/attachments/:slot", h.Attach)
	g.DELETE("/:id/attachments/:slot/:index", h.Detach)
	g.POST("/:id/defaults", h.ApplyDefaults)
	g.POST("/:id/submit", h.Submit)
	g.GET("/:id/autosave", h.Autosave)
}

// wizardError maps session and controller errors to HTTP errors.
// Validation failures and oversized files pass through to the error handler.
func wizardError(err error) error {
	var failures validation.Failures
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &failures), errors.Is(err, attachment.ErrTooLarge):
		return err
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNoAutosave):
		code = http.StatusNotFound
	case errors.Is(err, wizard.ErrNotPermitted):
		code = http.StatusForbidden
	case errors.Is(err, wizard.ErrSubmitting), errors.Is(err, wizard.ErrFinished):
		code = http.StatusConflict
	case errors.Is(err, session.ErrUnknownKind),
		errors.Is(err, session.ErrEditUnsupported),
		errors.Is(err, session.ErrNoDefaults),
		errors.Is(err, wizard.ErrStepOutOfRange),
		errors.Is(err, attachment.ErrUnknownSlot),
		errors.Is(err, attachment.ErrNoSuchFile):
		code = http.StatusBadRequest
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

func (h *WizardHandler) lookup(c echo.Context) (session.Wizard, error) {
	w, err := h.store.Get(c.Param("id"))
	if err != nil {
		return nil, wizardError(err)
	}
	return w, nil
}

func (h *WizardHandler) respond(c echo.Context, code int, id string, w session.Wizard, failures validation.Failures) error {
	resp, err := h.response(id, w, failures)
	if err != nil {
		return err
	}
	return c.JSON(code, resp)
}

func (h *WizardHandler) response(id string, w session.Wizard, failures validation.Failures) (dto.WizardResponse, error) {
	d, err := w.Draft()
	if err != nil {
		return dto.WizardResponse{}, echo.NewHTTPError(http.StatusInternalServerError, "encode draft").SetInternal(err)
	}
	return dto.WizardResponse{
		ID:       id,
		Kind:     string(w.Kind()),
		View:     w.View(),
		Draft:    d,
		Failures: failures,
	}, nil
}

// Open starts a session. ?edit=<id> hydrates it from an existing record.
func (h *WizardHandler) Open(c echo.Context) error {
	req := session.Request{
		Kind:   session.Kind(c.Param("kind")),
		Role:   c.Request().Header.Get(HeaderRole),
		EditID: c.QueryParam("edit"),
	}
	w, err := h.opener.New(c.Request().Context(), req)
	if err != nil {
		h.logger.Info("wizard not opened",
			zap.String("kind", string(req.Kind)),
			zap.String("role", req.Role),
			zap.Error(err))
		return wizardError(err)
	}
	id := h.store.Put(w)
	return h.respond(c, http.StatusCreated, id, w, nil)
}

func (h *WizardHandler) Get(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

func (h *WizardHandler) Close(c echo.Context) error {
	if err := h.store.Delete(c.Param("id")); err != nil {
		return wizardError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Replace swaps the draft for the request body.
func (h *WizardHandler) Replace(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if err := w.Replace(c.Request().Context(), body); err != nil {
		if errors.Is(err, wizard.ErrSubmitting) || errors.Is(err, wizard.ErrFinished) {
			return wizardError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid draft: "+err.Error()).SetInternal(err)
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

// Advance validates the current step. A blocked step answers 422 with the
// unchanged session and its failures.
func (h *WizardHandler) Advance(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	failures, err := w.Advance()
	if err != nil {
		return wizardError(err)
	}
	code := http.StatusOK
	if len(failures) > 0 {
		code = http.StatusUnprocessableEntity
	}
	return h.respond(c, code, c.Param("id"), w, failures)
}

func (h *WizardHandler) Retreat(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	if err := w.Retreat(); err != nil {
		return wizardError(err)
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

func (h *WizardHandler) JumpTo(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid step")
	}
	if err := w.JumpTo(step); err != nil {
		return wizardError(err)
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

// Attach stores the multipart "file" field in the named slot.
func (h *WizardHandler) Attach(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required").SetInternal(err)
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file").SetInternal(err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file").SetInternal(err)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = mimetype.Detect(data).String()
	}

	slot := c.Param("slot")
	err = w.Attach(slot, attachment.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, attachment.ErrTooLarge) {
			metrics.AttachmentsRejected.WithLabelValues(string(w.Kind()), slot).Inc()
		}
		return wizardError(err)
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

func (h *WizardHandler) Detach(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file index")
	}
	if err := w.Detach(c.Param("slot"), index); err != nil {
		return wizardError(err)
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

func (h *WizardHandler) ApplyDefaults(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	if err := w.ApplyDefaults(); err != nil {
		return wizardError(err)
	}
	return h.respond(c, http.StatusOK, c.Param("id"), w, nil)
}

// Submit sends the draft to the portal API. A rejection by the portal
// answers 502 with its message; the session stays open for another try.
func (h *WizardHandler) Submit(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	res, err := w.Submit(c.Request().Context())
	if err != nil {
		return wizardError(err)
	}
	if !res.OK {
		return echo.NewHTTPError(http.StatusBadGateway, res.Error)
	}

	base, err := h.response(c.Param("id"), w, nil)
	if err != nil {
		return err
	}
	resp := dto.SubmitResponse{WizardResponse: base, Status: res.Status}
	if json.Valid(res.Body) {
		resp.Record = res.Body
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *WizardHandler) Autosave(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	status, err := w.Autosave()
	if err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, status)
}
