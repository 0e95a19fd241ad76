package hours

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// Backend is the part of the backend API the opening hours screen uses.
type Backend interface {
	ConfigByKey(ctx context.Context, token, key string) (*domain.Config, error)
	UpdateConfigValue(ctx context.Context, token, id string, value json.RawMessage) error
}

// Handler handles the opening hours screen.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *pages.Renderer
}

// NewHandler creates a new opening hours handler.
func NewHandler(logger *slog.Logger, backend Backend, renderer *pages.Renderer) *Handler {
	return &Handler{
		logger:  logger,
		backend: backend,
		pages:   renderer,
	}
}

// Day is one row of the schedule form.
type Day struct {
	Key    string
	Label  string
	Hours  domain.DayHours
	Fields DayFields
}

// HoursPage is the opening hours page model.
type HoursPage struct {
	Days  []Day
	Found bool
}

// Show renders the weekly schedule of the signed-in tenant.
// GET /hours
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	page := HoursPage{}
	p := pages.Page{Title: "hours.title", Active: "hours"}

	_, schedule, err := h.load(r.Context(), s.Token)
	switch {
	case err == nil:
		page.Found = true
		for _, day := range schedule.Days() {
			page.Days = append(page.Days, Day{
				Key:    day,
				Label:  h.dayLabel(r, day),
				Hours:  schedule[day],
				Fields: DayHoursField(day),
			})
		}
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, domain.ErrConfigNotFound):
		h.logger.Warn("opening hours not configured", "tenant_id", s.TenantID)
		p.Flash = h.pages.ErrorFlash(r, "hours.not_configured")
	default:
		h.logger.Error("failed to load opening hours", "error", err)
		p.Flash = h.pages.ErrorFlash(r, "hours.load_failed")
	}

	p.Data = page
	h.pages.Render(w, r, "hours", p)
}

// Save stores the submitted schedule. The stored config is fetched again so
// closed days keep the times they had.
// POST /hours
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	cfg, prev, err := h.load(r.Context(), s.Token)
	if err != nil {
		h.pages.Fail(w, r, "failed to load opening hours", err, "hours.load_failed", "/hours")
		return
	}

	next := ApplyHoursForm(prev, r.PostForm)
	value, err := json.Marshal(next)
	if err != nil {
		h.pages.Fail(w, r, "failed to encode opening hours", err, "hours.save_failed", "/hours")
		return
	}
	if err := h.backend.UpdateConfigValue(r.Context(), s.Token, cfg.ID, value); err != nil {
		h.pages.Fail(w, r, "failed to save opening hours", err, "hours.save_failed", "/hours")
		return
	}

	h.logger.Info("opening hours saved", "config_id", cfg.ID, "tenant_id", s.TenantID, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "hours.saved"))
	httputil.Redirect(w, r, "/hours")
}

// dayLabel translates weekday keys; other keys are shown as stored.
func (h *Handler) dayLabel(r *http.Request, day string) string {
	key := "hours.day." + strings.ToLower(day)
	if label := h.pages.T(r, key); label != key {
		return label
	}
	return day
}

func (h *Handler) load(ctx context.Context, token string) (*domain.Config, domain.OpeningHours, error) {
	cfg, err := h.backend.ConfigByKey(ctx, token, domain.OpeningHoursKey)
	if err != nil {
		return nil, nil, err
	}
	schedule := domain.OpeningHours{}
	if len(cfg.ConfigValue) > 0 {
		if err := json.Unmarshal(cfg.ConfigValue, &schedule); err != nil {
			return nil, nil, fmt.Errorf("decode opening hours: %w", err)
		}
	}
	return cfg, schedule, nil
}
