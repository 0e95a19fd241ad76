package configs

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/listview"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
	"github.com/tendant/simple-admin-console/pkg/jsonedit"
)

// Backend is the part of the backend API the configs screen uses.
type Backend interface {
	ListConfigs(ctx context.Context, token string) ([]domain.Config, error)
	GetTenantConfig(ctx context.Context, token, tenantID, id string) (*domain.Config, error)
	CreateConfig(ctx context.Context, token string, in domain.ConfigInput) error
	UpdateTenantConfig(ctx context.Context, token, tenantID, id string, in domain.ConfigInput) error
	DeleteConfig(ctx context.Context, token, id string) error
	ListTenants(ctx context.Context, token string) ([]domain.Tenant, error)
}

// Editor actions posted by the form buttons.
const (
	ActionValidate = "validate"
	ActionBeautify = "beautify"
	ActionSave     = "save"
)

// Handler handles the configs screen.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *pages.Renderer
	catalog *i18n.Catalog
}

// NewHandler creates a new configs handler.
func NewHandler(logger *slog.Logger, backend Backend, renderer *pages.Renderer, catalog *i18n.Catalog) *Handler {
	return &Handler{
		logger:  logger,
		backend: backend,
		pages:   renderer,
		catalog: catalog,
	}
}

var columns = listview.Columns[domain.Config]{
	ID:   func(c domain.Config) string { return c.ID },
	Name: func(c domain.Config) string { return c.ConfigKey },
}

// ConfigForm is the editor panel model.
type ConfigForm struct {
	ID        string
	ConfigKey string
	TenantID  string
	Value     string
	Errors    map[string]string
	JSONError string
	Notice    string
}

// Gutter returns the line numbers shown next to the editor.
func (f *ConfigForm) Gutter() string {
	return jsonedit.LineNumbers(f.Value)
}

// Lines returns the editor height in rows.
func (f *ConfigForm) Lines() int {
	return jsonedit.LineCount(f.Value)
}

// ListPage is the configs page model.
type ListPage struct {
	listview.Page[domain.Config]
	Form    *ConfigForm
	Tenants []domain.Tenant
	Sort    listview.SortLinks
}

// EditLink opens the editor for c.
func (p ListPage) EditLink(c domain.Config) string {
	return p.State.Link("/configs", url.Values{
		"panel":  {string(listview.PanelEdit)},
		"id":     {c.ID},
		"tenant": {c.TenantID},
	})
}

// FormAction is the URL the editor posts to.
func (p ListPage) FormAction() string {
	if p.Form == nil || p.Form.ID == "" {
		return p.State.ListLink("/configs/new")
	}
	return p.State.Link("/configs/"+url.PathEscape(p.Form.TenantID)+"/"+url.PathEscape(p.Form.ID), nil)
}

// List renders every config entry visible to the signed-in user.
// GET /configs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())

	var form *ConfigForm
	switch st.Panel {
	case listview.PanelNew:
		form = &ConfigForm{TenantID: s.TenantID, Value: jsonedit.NewValue}
	case listview.PanelEdit, listview.PanelView:
		tenantID := r.URL.Query().Get("tenant")
		if tenantID == "" {
			tenantID = s.TenantID
		}
		c, err := h.backend.GetTenantConfig(r.Context(), s.Token, tenantID, st.ID)
		if err != nil {
			h.pages.Fail(w, r, "failed to load config", err, "configs.load_failed", st.ListLink("/configs"))
			return
		}
		st.Panel = listview.PanelEdit
		form = &ConfigForm{
			ID:        c.ID,
			ConfigKey: c.ConfigKey,
			TenantID:  c.TenantID,
			Value:     jsonedit.Format(c.ConfigValue),
		}
		if form.TenantID == "" {
			form.TenantID = tenantID
		}
	}

	h.render(w, r, http.StatusOK, st, form)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, st listview.State, form *ConfigForm) {
	s, _ := session.FromContext(r.Context())

	view := &listview.View[domain.Config]{
		Name:    "configs",
		Columns: columns,
		Logger:  h.logger,
		Fetch: func(ctx context.Context) ([]domain.Config, error) {
			return h.backend.ListConfigs(ctx, s.Token)
		},
	}
	page := ListPage{
		Page: view.Load(r.Context(), st, h.catalog.Tag(i18n.LanguageFrom(r.Context()))),
		Form: form,
		Sort: listview.Links("/configs", st),
	}
	if form != nil {
		page.Tenants = h.tenants(r.Context(), s)
	}
	p := pages.Page{Title: "configs.title", Active: "configs", Data: page}
	if page.Err != nil {
		p.Flash = h.pages.ErrorFlash(r, "configs.load_failed")
	}
	h.pages.RenderStatus(w, r, status, "configs", p)
}

// tenants returns the tenant dropdown options. Users who may not list
// tenants get their own tenant only.
func (h *Handler) tenants(ctx context.Context, s *domain.Session) []domain.Tenant {
	if s.Role == domain.RoleSuperAdmin {
		list, err := h.backend.ListTenants(ctx, s.Token)
		if err == nil {
			return list
		}
		h.logger.Warn("failed to load tenants for config editor", "error", err)
	}
	if s.TenantID == "" {
		return nil
	}
	return []domain.Tenant{{ID: s.TenantID, TenantName: s.TenantID}}
}

// Create handles the new config editor.
// POST /configs/new
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "", "")
}

// Update handles the config editor of an existing entry.
// POST /configs/{tenantId}/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, chi.URLParam(r, "tenantId"), chi.URLParam(r, "id"))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, tenantID, id string) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())
	st.Panel, st.ID = listview.PanelNew, ""
	if id != "" {
		st.Panel, st.ID = listview.PanelEdit, id
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := &ConfigForm{
		ID:        id,
		ConfigKey: auth.CleanLine(r.PostForm.Get("configKey")),
		TenantID:  auth.CleanLine(r.PostForm.Get("tenantId")),
		Value:     r.PostForm.Get("configValue"),
	}
	if id != "" {
		form.TenantID = tenantID
	}
	if s.Role != domain.RoleSuperAdmin && form.TenantID == "" {
		form.TenantID = s.TenantID
	}

	switch r.PostForm.Get("action") {
	case ActionValidate:
		if _, err := jsonedit.Validate(form.Value); err != nil {
			form.JSONError = jsonedit.ErrorMessage(err)
		} else {
			form.Notice = h.pages.T(r, "configs.valid_json")
		}
		h.render(w, r, http.StatusOK, st, form)
		return
	case ActionBeautify:
		if pretty, err := jsonedit.Beautify(form.Value); err != nil {
			form.JSONError = jsonedit.ErrorMessage(err)
		} else {
			form.Value = pretty
		}
		h.render(w, r, http.StatusOK, st, form)
		return
	}

	v := domain.NewValidationError()
	if form.ConfigKey == "" {
		v.Add("configKey", "form.required")
	}
	if form.TenantID == "" {
		v.Add("tenantId", "form.required")
	}
	value, jsonErr := jsonedit.Validate(form.Value)
	if jsonErr != nil {
		form.JSONError = jsonedit.ErrorMessage(jsonErr)
	}
	if !v.Empty() || jsonErr != nil {
		form.Errors = h.pages.FieldErrors(r, v.Fields)
		h.render(w, r, http.StatusUnprocessableEntity, st, form)
		return
	}

	in := domain.ConfigInput{ConfigKey: form.ConfigKey, TenantID: form.TenantID, ConfigValue: value}
	var err error
	if id == "" {
		err = h.backend.CreateConfig(r.Context(), s.Token, in)
	} else {
		err = h.backend.UpdateTenantConfig(r.Context(), s.Token, tenantID, id, in)
	}
	if err != nil {
		h.pages.Fail(w, r, "failed to save config", err, "configs.save_failed", st.ListLink("/configs"))
		return
	}

	h.logger.Info("config saved", "config_id", id, "config_key", form.ConfigKey, "tenant_id", form.TenantID, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "configs.saved"))
	httputil.Redirect(w, r, st.ListLink("/configs"))
}

// Delete deletes a config entry.
// POST /configs/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())
	id := chi.URLParam(r, "id")

	if err := h.backend.DeleteConfig(r.Context(), s.Token, id); err != nil {
		h.pages.Fail(w, r, "failed to delete config", err, "configs.delete_failed", st.ListLink("/configs"))
		return
	}

	h.logger.Info("config deleted", "config_id", id, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "configs.deleted"))
	httputil.Redirect(w, r, st.ListLink("/configs"))
}
