package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-admin-console/internal/http/features/pages/pagestest"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/pkg/apiclient"
	pkgauth "github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

type fakeBackend struct {
	loginErr  error
	checkErr  error
	signupErr error
	forgotMsg string
	forgotErr error
	users     map[string]*domain.User

	checked []string
	signups []apiclient.SignupInput
}

func (f *fakeBackend) Login(_ context.Context, email, _ string) (*apiclient.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &apiclient.LoginResult{Token: "tok-" + email, User: &domain.User{ID: "u1", Email: email}}, nil
}

func (f *fakeBackend) CheckToken(_ context.Context, token string) error {
	f.checked = append(f.checked, token)
	return f.checkErr
}

func (f *fakeBackend) GetUser(_ context.Context, _, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeBackend) Signup(_ context.Context, _ string, in apiclient.SignupInput) (string, error) {
	f.signups = append(f.signups, in)
	return "ok", f.signupErr
}

func (f *fakeBackend) ForgotPassword(_ context.Context, _ string) (string, error) {
	return f.forgotMsg, f.forgotErr
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T, backend *fakeBackend) http.Handler {
	t.Helper()
	return newPolicyRouter(t, backend, nil)
}

func newPolicyRouter(t *testing.T, backend *fakeBackend, policy *pkgauth.PasswordPolicy) http.Handler {
	t.Helper()
	renderer, _ := pagestest.Renderer(t)
	r := chi.NewRouter()
	h := NewHandler(pagestest.Logger(), backend, renderer, httputil.DefaultCookieConfig(), policy)
	h.RegisterRoutes(r, map[string]func(http.Handler) http.Handler{
		"auth":   passthrough,
		"signup": passthrough,
		"reset":  passthrough,
	})
	return r
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == httputil.TokenCookie {
			return c
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	backend := &fakeBackend{}
	router := newTestRouter(t, backend)

	form := url.Values{"email": {" ada@example.com "}, "password": {"secret"}, "next": {"/posts?sort=name"}}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/login", form, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts?sort=name", rec.Header().Get("Location"))
	assert.Equal(t, []string{"tok-ada@example.com"}, backend.checked)

	c := tokenCookie(rec)
	require.NotNil(t, c)
	assert.Equal(t, "tok-ada@example.com", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeBackend
		form       url.Values
		wantStatus int
		wantText   string
	}{
		{
			name:       "missing password",
			backend:    &fakeBackend{},
			form:       url.Values{"email": {"ada@example.com"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "Please enter your email and password.",
		},
		{
			name:       "wrong credentials",
			backend:    &fakeBackend{loginErr: domain.ErrInvalidCredentials},
			form:       url.Values{"email": {"ada@example.com"}, "password": {"nope"}},
			wantStatus: http.StatusUnauthorized,
			wantText:   "Invalid email or password.",
		},
		{
			name:       "backend down",
			backend:    &fakeBackend{loginErr: apiclient.ErrUnavailable},
			form:       url.Values{"email": {"ada@example.com"}, "password": {"nope"}},
			wantStatus: http.StatusBadGateway,
			wantText:   "The service is unavailable. Please try again later.",
		},
		{
			name:       "token rejected",
			backend:    &fakeBackend{checkErr: domain.ErrInvalidToken},
			form:       url.Values{"email": {"ada@example.com"}, "password": {"secret"}},
			wantStatus: http.StatusUnauthorized,
			wantText:   "Your session could not be verified. Please sign in again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.backend)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/login", tt.form, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Contains(t, rec.Body.String(), `value="ada@example.com"`)
			assert.Nil(t, tokenCookie(rec))
		})
	}
}

func TestLogin_ExternalNextIgnored(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{})

	form := url.Values{"email": {"ada@example.com"}, "password": {"secret"}, "next": {"https://evil.test/"}}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/login", form, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/logout", url.Values{}, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	c := tokenCookie(rec)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func inviteToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": userID}).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}

func TestSignupPage(t *testing.T) {
	token := inviteToken(t, "u7")
	router := newTestRouter(t, &fakeBackend{users: map[string]*domain.User{
		"u7": {ID: "u7", Email: "new@example.com", UserName: "newbie"},
	}})

	tests := []struct {
		name     string
		target   string
		wantText string
	}{
		{name: "prefilled", target: "/signup?token=" + token, wantText: `value="new@example.com"`},
		{name: "missing token", target: "/signup", wantText: "The invitation link is missing its token."},
		{name: "garbage token", target: "/signup?token=abc", wantText: "The invitation link is invalid."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, pagestest.Request(http.MethodGet, tt.target, nil, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
		})
	}
}

func TestSignupPage_PasswordRules(t *testing.T) {
	token := inviteToken(t, "u7")
	users := map[string]*domain.User{"u7": {ID: "u7", Email: "new@example.com"}}

	t.Run("default policy", func(t *testing.T) {
		router := newTestRouter(t, &fakeBackend{users: users})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, pagestest.Request(http.MethodGet, "/signup?token="+token, nil, nil))

		body := rec.Body.String()
		assert.Contains(t, body, "The password must contain:")
		assert.Contains(t, body, "<li>at least 8 characters</li>")
		assert.Contains(t, body, "<li>an uppercase letter (A-Z)</li>")
		assert.Contains(t, body, "<li>a number (0-9)</li>")
		assert.Contains(t, body, "one of these characters: !@#$%^&amp;*(),.?")
		assert.Contains(t, body, "<li>no spaces or accented letters</li>")
		assert.NotContains(t, body, "a lowercase letter")
	})

	t.Run("custom policy", func(t *testing.T) {
		router := newPolicyRouter(t, &fakeBackend{users: users}, &pkgauth.PasswordPolicy{MinLength: 12, RequireLowercase: true})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, pagestest.Request(http.MethodGet, "/signup?token="+token, nil, nil))

		body := rec.Body.String()
		assert.Contains(t, body, "<li>at least 12 characters</li>")
		assert.Contains(t, body, "<li>a lowercase letter</li>")
		assert.NotContains(t, body, "an uppercase letter")
	})

	t.Run("no requirements", func(t *testing.T) {
		router := newPolicyRouter(t, &fakeBackend{users: users}, &pkgauth.PasswordPolicy{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, pagestest.Request(http.MethodGet, "/signup?token="+token, nil, nil))

		assert.NotContains(t, rec.Body.String(), "The password must contain:")
	})
}

func TestSignup(t *testing.T) {
	backend := &fakeBackend{}
	router := newTestRouter(t, backend)

	form := url.Values{
		"token":           {"invite"},
		"userName":        {"newbie"},
		"email":           {"new@example.com"},
		"password":        {"Sup3r$ecret"},
		"passwordConfirm": {"Sup3r$ecret"},
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/signup", form, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	require.Len(t, backend.signups, 1)
	assert.Equal(t, "newbie", backend.signups[0].UserName)

	flash := pagestest.Flash(t, rec)
	require.NotNil(t, flash)
	assert.Equal(t, httputil.FlashSuccess, flash.Kind)
}

func TestSignup_Validation(t *testing.T) {
	valid := func() url.Values {
		return url.Values{
			"token":           {"invite"},
			"userName":        {"newbie"},
			"email":           {"new@example.com"},
			"password":        {"Sup3r$ecret"},
			"passwordConfirm": {"Sup3r$ecret"},
		}
	}
	tests := []struct {
		name     string
		mutate   func(url.Values)
		wantText string
	}{
		{name: "weak password", mutate: func(v url.Values) { v.Set("password", "short"); v.Set("passwordConfirm", "short") }, wantText: "The password does not meet the requirements."},
		{name: "mismatch", mutate: func(v url.Values) { v.Set("passwordConfirm", "Sup3r$ecreT") }, wantText: "Passwords do not match."},
		{name: "accented password", mutate: func(v url.Values) { v.Set("password", "Ébcdefg1!"); v.Set("passwordConfirm", "Ébcdefg1!") }, wantText: "The password does not meet the requirements."},
		{name: "password with space", mutate: func(v url.Values) { v.Set("password", "Abc defg1!"); v.Set("passwordConfirm", "Abc defg1!") }, wantText: "The password does not meet the requirements."},
		{name: "missing user name", mutate: func(v url.Values) { v.Set("userName", " ") }, wantText: "Please fill in all fields."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			router := newTestRouter(t, backend)
			form := valid()
			tt.mutate(form)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/signup", form, nil))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Empty(t, backend.signups)
		})
	}
}

func TestSignup_BackendError(t *testing.T) {
	backend := &fakeBackend{signupErr: &apiclient.APIError{StatusCode: http.StatusConflict, Message: "Email already in use"}}
	router := newTestRouter(t, backend)

	form := url.Values{
		"token":           {"invite"},
		"userName":        {"newbie"},
		"email":           {"new@example.com"},
		"password":        {"Sup3r$ecret"},
		"passwordConfirm": {"Sup3r$ecret"},
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/signup", form, nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signup failed. Email already in use")
}

func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeBackend
		email      string
		wantStatus int
		wantText   string
	}{
		{name: "backend message", backend: &fakeBackend{forgotMsg: "Check your inbox"}, email: "ada@example.com", wantStatus: http.StatusOK, wantText: "Check your inbox"},
		{name: "default message", backend: &fakeBackend{}, email: "ada@example.com", wantStatus: http.StatusOK, wantText: "If the address is registered, a reset link is on its way."},
		{name: "rejected", backend: &fakeBackend{forgotErr: &apiclient.APIError{StatusCode: http.StatusBadRequest}}, email: "ada@example.com", wantStatus: http.StatusOK, wantText: "The reset request was rejected."},
		{name: "invalid email", backend: &fakeBackend{}, email: "not-an-email", wantStatus: http.StatusUnprocessableEntity, wantText: "Please enter a valid email address."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.backend)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, pagestest.Request(http.MethodPost, "/forgot-password", url.Values{"email": {tt.email}}, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
		})
	}
}
