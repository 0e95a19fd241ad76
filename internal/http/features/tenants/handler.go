package tenants

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/listview"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// Backend is the part of the backend API the tenants screen uses.
type Backend interface {
	ListTenants(ctx context.Context, token string) ([]domain.Tenant, error)
	GetTenant(ctx context.Context, token, id string) (*domain.Tenant, error)
	CreateTenant(ctx context.Context, token string, in domain.TenantInput) (*domain.Tenant, error)
	UpdateTenant(ctx context.Context, token, id string, in domain.TenantInput) (*domain.Tenant, error)
	DeleteTenant(ctx context.Context, token, id string) error
}

// Handler handles the tenants list screen.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *pages.Renderer
	catalog *i18n.Catalog
	emails  auth.EmailRules
}

// NewHandler creates a new tenants handler.
func NewHandler(logger *slog.Logger, backend Backend, renderer *pages.Renderer, catalog *i18n.Catalog) *Handler {
	return &Handler{
		logger:  logger,
		backend: backend,
		pages:   renderer,
		catalog: catalog,
	}
}

// WithEmailRules sets the checks applied to the owner email.
func (h *Handler) WithEmailRules(rules auth.EmailRules) *Handler {
	h.emails = rules
	return h
}

var columns = listview.Columns[domain.Tenant]{
	ID:   func(t domain.Tenant) string { return t.ID },
	Name: func(t domain.Tenant) string { return t.TenantName },
	Date: func(t domain.Tenant) time.Time { return t.CreatedAt },
}

// TenantForm is the create/edit panel model.
type TenantForm struct {
	ID     string
	Input  domain.TenantInput
	Errors map[string]string
}

// ListPage is the tenants page model.
type ListPage struct {
	listview.Page[domain.Tenant]
	Form   *TenantForm
	Detail *domain.Tenant
	Sort   listview.SortLinks
}

// List renders every tenant.
// GET /tenants
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseState(r.URL.Query())

	var form *TenantForm
	var detail *domain.Tenant
	switch st.Panel {
	case listview.PanelNew:
		form = &TenantForm{}
	case listview.PanelEdit, listview.PanelView:
		t, err := h.backend.GetTenant(r.Context(), s.Token, st.ID)
		if err != nil {
			h.pages.Fail(w, r, "failed to load tenant", err, "tenants.load_failed", st.ListLink("/tenants"))
			return
		}
		if st.Panel == listview.PanelView {
			detail = t
		} else {
			form = &TenantForm{ID: t.ID, Input: domain.TenantInput{
				TenantName:  t.TenantName,
				Domain:      t.Domain,
				Description: t.Description,
				Email:       t.Owner(),
			}}
		}
	}

	h.render(w, r, http.StatusOK, st, form, detail)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, st listview.State, form *TenantForm, detail *domain.Tenant) {
	s, _ := session.FromContext(r.Context())

	view := &listview.View[domain.Tenant]{
		Name:    "tenants",
		Columns: columns,
		Logger:  h.logger,
		Fetch: func(ctx context.Context) ([]domain.Tenant, error) {
			return h.backend.ListTenants(ctx, s.Token)
		},
	}
	page := ListPage{
		Page:   view.Load(r.Context(), st, h.catalog.Tag(i18n.LanguageFrom(r.Context()))),
		Form:   form,
		Detail: detail,
		Sort:   listview.Links("/tenants", st),
	}

	p := pages.Page{Title: "tenants.title", Active: "tenants", Data: page}
	if page.Err != nil {
		p.Flash = h.pages.ErrorFlash(r, "tenants.load_failed")
	}
	h.pages.RenderStatus(w, r, status, "tenants", p)
}

// Create creates a tenant.
// POST /tenants/new
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update updates a tenant.
// POST /tenants/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseState(r.URL.Query())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := &TenantForm{ID: id, Input: domain.TenantInput{
		TenantName:  auth.CleanLine(r.PostForm.Get("tenantName")),
		Domain:      auth.CleanLine(r.PostForm.Get("domain")),
		Description: auth.CleanInput(r.PostForm.Get("description")),
		Email:       auth.CleanLine(r.PostForm.Get("email")),
	}}

	err := form.Input.Validate()
	if err == nil {
		if key := h.emails.ProblemKey(form.Input.Email); key != "" {
			verr := domain.NewValidationError()
			verr.Add("email", key)
			err = verr
		}
	}
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			form.Errors = h.pages.FieldErrors(r, verr.Fields)
		}
		st.Panel, st.ID = listview.PanelNew, ""
		if id != "" {
			st.Panel, st.ID = listview.PanelEdit, id
		}
		h.render(w, r, http.StatusUnprocessableEntity, st, form, nil)
		return
	}

	if id == "" {
		_, err = h.backend.CreateTenant(r.Context(), s.Token, form.Input)
	} else {
		_, err = h.backend.UpdateTenant(r.Context(), s.Token, id, form.Input)
	}
	if err != nil {
		h.pages.Fail(w, r, "failed to save tenant", err, "tenants.save_failed", st.ListLink("/tenants"))
		return
	}

	h.logger.Info("tenant saved", "tenant_id", id, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "tenants.saved"))
	httputil.Redirect(w, r, st.ListLink("/tenants"))
}

// Delete deletes a tenant.
// POST /tenants/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseState(r.URL.Query())
	id := chi.URLParam(r, "id")

	if err := h.backend.DeleteTenant(r.Context(), s.Token, id); err != nil {
		h.pages.Fail(w, r, "failed to delete tenant", err, "tenants.delete_failed", st.ListLink("/tenants"))
		return
	}

	h.logger.Info("tenant deleted", "tenant_id", id, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "tenants.deleted"))
	httputil.Redirect(w, r, st.ListLink("/tenants"))
}
