package posts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/http/middleware"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/listview"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// Backend is the part of the backend API the posts screen uses.
type Backend interface {
	ListPosts(ctx context.Context, token, tenantID string) ([]domain.Post, error)
	GetPost(ctx context.Context, token, tenantID, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, token, tenantID string, in domain.PostInput) error
	UpdatePost(ctx context.Context, token, tenantID, id string, in domain.PostInput) error
	RemovePost(ctx context.Context, token, tenantID, id string) error
}

// Handler handles the posts list screen.
type Handler struct {
	logger        *slog.Logger
	backend       Backend
	pages         *pages.Renderer
	catalog       *i18n.Catalog
	maxUploadSize int64
	maxTitle      int
	maxField      int
}

// NewHandler creates a new posts handler.
func NewHandler(logger *slog.Logger, backend Backend, renderer *pages.Renderer, catalog *i18n.Catalog, maxUploadSize int64) *Handler {
	return &Handler{
		logger:        logger,
		backend:       backend,
		pages:         renderer,
		catalog:       catalog,
		maxUploadSize: maxUploadSize,
	}
}

// WithLengthLimits caps the title and description lengths in runes.
// Zero leaves a field unlimited.
func (h *Handler) WithLengthLimits(maxTitle, maxField int) *Handler {
	h.maxTitle, h.maxField = maxTitle, maxField
	return h
}

var columns = listview.Columns[domain.Post]{
	ID:   func(p domain.Post) string { return p.ID },
	Name: func(p domain.Post) string { return p.Title },
	Date: func(p domain.Post) time.Time { return p.Date },
}

// PostForm is the side panel model.
type PostForm struct {
	ID            string
	Title         string
	Slug          string
	Description   string
	ExistingImage string
	Errors        map[string]string
}

// ListPage is the posts page model.
type ListPage struct {
	listview.Page[domain.Post]
	Form *PostForm
	Sort listview.SortLinks
}

// List renders the posts of the signed-in user's tenant.
// GET /posts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseState(r.URL.Query())

	var form *PostForm
	switch st.Panel {
	case listview.PanelNew:
		form = &PostForm{}
	case listview.PanelEdit:
		post, err := h.backend.GetPost(r.Context(), s.Token, s.TenantID, st.ID)
		if err != nil {
			h.pages.Fail(w, r, "failed to load post", err, "posts.load_failed", "/posts")
			return
		}
		form = formFromPost(post)
	}

	h.render(w, r, http.StatusOK, st, form)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, st listview.State, form *PostForm) {
	s, _ := session.FromContext(r.Context())

	view := &listview.View[domain.Post]{
		Name:    "posts",
		Columns: columns,
		Logger:  h.logger,
		Fetch: func(ctx context.Context) ([]domain.Post, error) {
			if s.TenantID == "" {
				return nil, domain.ErrTenantNotFound
			}
			return h.backend.ListPosts(ctx, s.Token, s.TenantID)
		},
	}
	page := ListPage{
		Page: view.Load(r.Context(), st, h.catalog.Tag(i18n.LanguageFrom(r.Context()))),
		Form: form,
		Sort: listview.Links("/posts", st),
	}

	p := pages.Page{Title: "posts.title", Active: "posts", Data: page}
	if page.Err != nil {
		p.Flash = h.pages.ErrorFlash(r, "posts.load_failed")
	}
	h.pages.RenderStatus(w, r, status, "posts", p)
}

// Create creates a post.
// POST /posts/new
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update updates a post.
// POST /posts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseState(r.URL.Query())

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if middleware.IsBodyTooLarge(err) {
			h.pages.Flash(w, httputil.FlashError, h.pages.T(r, "posts.image_too_large"))
			httputil.Redirect(w, r, st.Link("/posts", nil))
			return
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := &PostForm{
		ID:            id,
		Title:         auth.CleanLine(r.PostForm.Get("title")),
		Description:   auth.CleanInput(r.PostForm.Get("description")),
		ExistingImage: r.PostForm.Get("existingImage"),
	}
	if r.PostForm.Get("removeImage") != "" {
		form.ExistingImage = ""
	}

	in := domain.PostInput{
		Title:         form.Title,
		Description:   form.Description,
		ExistingImage: form.ExistingImage,
	}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &domain.PostImage{Filename: header.Filename, Reader: file}
	case !errors.Is(err, http.ErrMissingFile):
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form.Slug = in.Slug()

	err = in.Validate(id != "")
	if err == nil {
		err = h.checkLengths(in)
	}
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			form.Errors = h.pages.FieldErrors(r, verr.Fields)
		}
		st.Panel = listview.PanelNew
		if id != "" {
			st.Panel, st.ID = listview.PanelEdit, id
		}
		h.render(w, r, http.StatusUnprocessableEntity, st, form)
		return
	}

	if id == "" {
		err = h.backend.CreatePost(r.Context(), s.Token, s.TenantID, in)
	} else {
		err = h.backend.UpdatePost(r.Context(), s.Token, s.TenantID, id, in)
	}
	if err != nil {
		h.pages.Fail(w, r, "failed to save post", err, "posts.save_failed", st.Link("/posts", nil))
		return
	}

	h.logger.Info("post saved", "post_id", id, "tenant_id", s.TenantID, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "posts.saved"))
	httputil.Redirect(w, r, st.Link("/posts", nil))
}

// Delete removes a post and its image.
// POST /posts/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	st := listview.ParseState(r.URL.Query())
	id := chi.URLParam(r, "id")

	if err := h.backend.RemovePost(r.Context(), s.Token, s.TenantID, id); err != nil {
		key := "posts.delete_failed"
		if errors.Is(err, domain.ErrOrphanedImage) {
			key = "posts.delete_orphaned"
		}
		h.pages.Fail(w, r, "failed to delete post", err, key, st.Link("/posts", nil))
		return
	}

	h.logger.Info("post deleted", "post_id", id, "tenant_id", s.TenantID, "user_id", s.UserID)
	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "posts.deleted"))
	httputil.Redirect(w, r, st.Link("/posts", nil))
}

// Slug returns the slug the server will store for a title.
// GET /posts/slug?title=
func (h *Handler) Slug(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"slug": domain.Slugify(r.URL.Query().Get("title")),
	})
}

func (h *Handler) checkLengths(in domain.PostInput) error {
	v := domain.NewValidationError()
	if err := auth.ValidateStringLength("title", in.Title, 0, h.maxTitle); err != nil {
		v.Add("title", "form.too_long")
	}
	if err := auth.ValidateStringLength("description", in.Description, 0, h.maxField); err != nil {
		v.Add("description", "form.too_long")
	}
	return v.Err()
}

func formFromPost(p *domain.Post) *PostForm {
	return &PostForm{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		ExistingImage: p.ImageName,
	}
}
