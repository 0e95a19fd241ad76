package users

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/listview"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// Backend is the part of the backend API the users screen uses.
type Backend interface {
	ListTenantUsers(ctx context.Context, token string) ([]domain.User, error)
	GetUser(ctx context.Context, token, id string) (*domain.User, error)
	UpdateRole(ctx context.Context, token, id string, role domain.Role) error
	DeleteUser(ctx context.Context, token, id string) error
	Invite(ctx context.Context, token string, emails []string) (string, error)
}

// Handler handles the users screen of the signed-in tenant.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *pages.Renderer
	catalog *i18n.Catalog
	emails  auth.EmailRules
}

// NewHandler creates a new users handler.
func NewHandler(logger *slog.Logger, backend Backend, renderer *pages.Renderer, catalog *i18n.Catalog) *Handler {
	return &Handler{
		logger:  logger,
		backend: backend,
		pages:   renderer,
		catalog: catalog,
	}
}

// WithEmailRules sets the checks applied to invited addresses.
func (h *Handler) WithEmailRules(rules auth.EmailRules) *Handler {
	h.emails = rules
	return h
}

var columns = listview.Columns[domain.User]{
	ID:   func(u domain.User) string { return u.ID },
	Name: func(u domain.User) string { return u.DisplayName() },
}

// InviteForm is the invite panel model.
type InviteForm struct {
	Emails string
	Error  string
}

// ListPage is the users page model.
type ListPage struct {
	listview.Page[domain.User]
	Detail       *domain.User
	Invite       *InviteForm
	AllowedRoles []domain.Role
	Sort         listview.SortLinks
}

// List renders the users of the signed-in tenant. Users sort by name only.
// GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())

	var detail *domain.User
	var invite *InviteForm
	switch st.Panel {
	case listview.PanelNew:
		invite = &InviteForm{}
	case listview.PanelView, listview.PanelEdit:
		u, err := h.backend.GetUser(r.Context(), s.Token, st.ID)
		if err != nil {
			h.pages.Fail(w, r, "failed to load user", err, "users.load_failed", st.ListLink("/users"))
			return
		}
		detail = u
	}

	h.render(w, r, http.StatusOK, st, detail, invite)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, st listview.State, detail *domain.User, invite *InviteForm) {
	s, _ := session.FromContext(r.Context())

	view := &listview.View[domain.User]{
		Name:    "users",
		Columns: columns,
		Logger:  h.logger,
		Fetch: func(ctx context.Context) ([]domain.User, error) {
			return h.backend.ListTenantUsers(ctx, s.Token)
		},
	}
	page := ListPage{
		Page:         view.Load(r.Context(), st, h.catalog.Tag(i18n.LanguageFrom(r.Context()))),
		Detail:       detail,
		Invite:       invite,
		AllowedRoles: domain.AllowedRoles(s.Role),
		Sort:         listview.Links("/users", st),
	}
	p := pages.Page{Title: "users.title", Active: "users", Data: page}
	if page.Err != nil {
		p.Flash = h.pages.ErrorFlash(r, "users.load_failed")
	}
	h.pages.RenderStatus(w, r, status, "users", p)
}

// ChangeRole assigns a new role to a user. Roles outside what the signed-in
// user may assign are ignored.
// POST /users/{id}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())
	id := chi.URLParam(r, "id")
	back := st.PanelLink("/users", listview.PanelView, id)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	role, err := domain.ParseRole(r.PostForm.Get("role"))
	if err != nil || !domain.CanAssign(s.Role, role) {
		h.logger.Warn("role change ignored",
			"user_id", s.UserID,
			"target_id", id,
			"acting_role", s.Role,
			"requested_role", r.PostForm.Get("role"))
		httputil.Redirect(w, r, back)
		return
	}

	if err := h.backend.UpdateRole(r.Context(), s.Token, id, role); err != nil {
		h.pages.Fail(w, r, "failed to change role", err, "users.role_failed", back)
		return
	}

	h.logger.Info("role changed", "user_id", s.UserID, "target_id", id, "role", role)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "users.role_changed"))
	httputil.Redirect(w, r, back)
}

// Delete deletes a user.
// POST /users/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())
	id := chi.URLParam(r, "id")

	if err := h.backend.DeleteUser(r.Context(), s.Token, id); err != nil {
		h.pages.Fail(w, r, "failed to delete user", err, "users.delete_failed", st.ListLink("/users"))
		return
	}

	h.logger.Info("user deleted", "user_id", s.UserID, "target_id", id)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "users.deleted"))
	httputil.Redirect(w, r, st.ListLink("/users"))
}

// Invite sends signup invitations to a comma separated list of addresses.
// POST /users/invite
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseNameState(r.URL.Query())
	st.Panel, st.ID = listview.PanelNew, ""

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	raw := auth.CleanInput(r.PostForm.Get("emails"))
	form := &InviteForm{Emails: raw}
	valid, problems := auth.ParseEmailList(raw, h.emails)
	switch {
	case len(problems) > 0:
		rejected := make([]string, len(problems))
		for i, p := range problems {
			rejected[i] = p.Email + ": " + h.pages.T(r, p.Key)
		}
		form.Error = h.pages.T(r, "users.invite_invalid", strings.Join(rejected, "; "))
	case len(valid) == 0:
		form.Error = h.pages.T(r, "form.required")
	}
	if form.Error != "" {
		h.render(w, r, http.StatusUnprocessableEntity, st, nil, form)
		return
	}

	msg, err := h.backend.Invite(r.Context(), s.Token, valid)
	if err != nil {
		h.pages.Fail(w, r, "failed to send invitations", err, "users.invite_failed", st.ListLink("/users"))
		return
	}

	h.logger.Info("invitations sent", "user_id", s.UserID, "count", len(valid))
	if msg == "" {
		msg = h.pages.T(r, "users.invite_sent")
	}
	h.pages.Flash(w, httputil.FlashSuccess, msg)
	httputil.Redirect(w, r, st.ListLink("/users"))
}
