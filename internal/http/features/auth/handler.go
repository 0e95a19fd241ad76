package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/pkg/apiclient"
	pkgauth "github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// Backend is the part of the backend API the sign-in screens use.
type Backend interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error)
	CheckToken(ctx context.Context, token string) error
	GetUser(ctx context.Context, token, id string) (*domain.User, error)
	Signup(ctx context.Context, inviteToken string, in apiclient.SignupInput) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
}

// Handler handles the login, logout, signup and forgot-password screens.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *pages.Renderer
	cookies httputil.CookieConfig
	policy  *pkgauth.PasswordPolicy
}

// NewHandler creates a new auth handler.
func NewHandler(
	logger *slog.Logger,
	backend Backend,
	renderer *pages.Renderer,
	cookies httputil.CookieConfig,
	policy *pkgauth.PasswordPolicy,
) *Handler {
	if policy == nil {
		policy = pkgauth.DefaultPasswordPolicy()
	}
	return &Handler{
		logger:  logger,
		backend: backend,
		pages:   renderer,
		cookies: cookies,
		policy:  policy,
	}
}

// LoginForm is the login page model.
type LoginForm struct {
	Email string
	Next  string
	Error string
}

// LoginPage renders the login form.
// GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, LoginForm{Next: r.URL.Query().Get("next")})
}

// Login signs in with email and password. The token is stored only after the
// backend confirms it with a token check.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := LoginForm{
		Email: pkgauth.CleanLine(r.PostForm.Get("email")),
		Next:  r.PostForm.Get("next"),
	}
	password := r.PostForm.Get("password")

	if form.Email == "" || password == "" {
		form.Error = h.pages.T(r, "login.required")
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	res, err := h.backend.Login(r.Context(), form.Email, password)
	if err != nil {
		h.logger.Info("login failed", "email", form.Email, "error", err)
		status := http.StatusUnauthorized
		form.Error = h.pages.T(r, "login.invalid")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			status = http.StatusBadGateway
			form.Error = h.pages.T(r, "errors.unavailable")
		}
		h.renderLogin(w, r, status, form)
		return
	}

	if err := h.backend.CheckToken(r.Context(), res.Token); err != nil {
		h.logger.Warn("token check failed after login", "email", form.Email, "error", err)
		form.Error = h.pages.T(r, "login.token_invalid")
		h.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}

	httputil.SetTokenCookie(w, res.Token, h.cookies)
	if res.User != nil {
		h.logger.Info("user logged in", "user_id", res.User.ID)
	}
	httputil.Redirect(w, r, httputil.SafeReturnPath(form.Next, "/"))
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form LoginForm) {
	h.pages.RenderStatus(w, r, status, "login", pages.Page{Title: "login.title", Data: form})
}

// Logout clears the token cookie.
// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearTokenCookie(w, h.cookies)
	httputil.Redirect(w, r, "/login")
}

// SignupForm is the invite acceptance page model.
type SignupForm struct {
	Token    string
	UserName string
	Email    string
	Errors   map[string]string
	Error    string
	// Rules are the translated password requirements.
	Rules []string
}

// SignupPage renders the invite acceptance form, prefilled with the invited
// address when the invite token resolves to a user.
// GET /signup?token=
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	form := SignupForm{Token: r.URL.Query().Get("token")}
	if form.Token == "" {
		form.Error = h.pages.T(r, "signup.missing_token")
		h.renderSignup(w, r, http.StatusOK, form)
		return
	}

	claims, err := pkgauth.DecodeToken(form.Token)
	if err != nil {
		h.logger.Warn("failed to decode invite token", "error", err)
		form.Error = h.pages.T(r, "signup.invalid_token")
		h.renderSignup(w, r, http.StatusOK, form)
		return
	}

	user, err := h.backend.GetUser(r.Context(), form.Token, claims.SubjectID())
	if err != nil {
		h.logger.Warn("failed to fetch invited user", "user_id", claims.SubjectID(), "error", err)
	} else {
		form.Email = user.Email
		form.UserName = user.UserName
	}

	h.renderSignup(w, r, http.StatusOK, form)
}

// Signup completes an invitation.
// POST /signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := SignupForm{
		Token:    r.PostForm.Get("token"),
		UserName: pkgauth.CleanLine(r.PostForm.Get("userName")),
		Email:    pkgauth.CleanLine(r.PostForm.Get("email")),
	}
	password := r.PostForm.Get("password")
	confirm := r.PostForm.Get("passwordConfirm")

	v := domain.NewValidationError()
	if form.Token == "" {
		v.Add("token", "signup.missing_token")
	}
	if form.UserName == "" {
		v.Add("userName", "form.required")
	}
	if form.Email == "" {
		v.Add("email", "form.required")
	}
	if err := h.policy.ValidatePassword(password); err != nil {
		v.Add("password", "signup.password_rules")
	} else if password != confirm {
		v.Add("password", "signup.password_mismatch")
	}
	if !v.Empty() {
		form.Errors = h.pages.FieldErrors(r, v.Fields)
		h.renderSignup(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	_, err := h.backend.Signup(r.Context(), form.Token, apiclient.SignupInput{
		UserName:        form.UserName,
		Email:           form.Email,
		Password:        password,
		PasswordConfirm: confirm,
	})
	if err != nil {
		h.logger.Error("signup failed", "email", form.Email, "error", err)
		form.Error = h.pages.T(r, "signup.failed")
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			form.Error += " " + apiErr.Message
		}
		h.renderSignup(w, r, http.StatusBadGateway, form)
		return
	}

	h.pages.Flash(w, httputil.FlashSuccess, h.pages.T(r, "signup.success"))
	httputil.Redirect(w, r, "/login")
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, status int, form SignupForm) {
	if h.policy.HasRequirements() {
		for _, req := range h.policy.Requirements() {
			form.Rules = append(form.Rules, h.pages.T(r, req.Key, req.Args...))
		}
	}
	h.pages.RenderStatus(w, r, status, "signup", pages.Page{Title: "signup.title", Data: form})
}

// ForgotForm is the forgot-password page model.
type ForgotForm struct {
	Email   string
	Message string
	Error   string
}

// ForgotPage renders the forgot-password form.
// GET /forgot-password
func (h *Handler) ForgotPage(w http.ResponseWriter, r *http.Request) {
	h.renderForgot(w, r, http.StatusOK, ForgotForm{})
}

// ForgotPassword asks the backend to send a reset email and shows its reply.
// POST /forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := ForgotForm{Email: pkgauth.CleanLine(r.PostForm.Get("email"))}
	if err := pkgauth.ValidateEmail(form.Email, false, false); err != nil {
		form.Error = h.pages.T(r, "form.invalid_email")
		h.renderForgot(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	msg, err := h.backend.ForgotPassword(r.Context(), form.Email)
	if err != nil {
		h.logger.Warn("forgot password failed", "email", form.Email, "error", err)
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) || errors.Is(err, apiclient.ErrUnavailable) {
			form.Error = h.pages.T(r, "forgot.error")
		} else {
			form.Error = h.pages.T(r, "forgot.failed")
		}
		h.renderForgot(w, r, http.StatusOK, form)
		return
	}

	form.Message = msg
	if form.Message == "" {
		form.Message = h.pages.T(r, "forgot.sent")
	}
	h.renderForgot(w, r, http.StatusOK, form)
}

func (h *Handler) renderForgot(w http.ResponseWriter, r *http.Request, status int, form ForgotForm) {
	h.pages.RenderStatus(w, r, status, "forgot", pages.Page{Title: "forgot.title", Data: form})
}
