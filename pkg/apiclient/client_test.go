package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

type recorded struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	RequestID string
	Body      string
	Form      map[string]string
	FileName  string
}

type fakeBackend struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client := New(Options{BaseURL: srv.URL, Transport: http.DefaultTransport})
	return fb, client
}

func (fb *fakeBackend) handle(method, path string, h func(w http.ResponseWriter, r *http.Request)) {
	fb.routes[method+" "+path] = h
}

func (fb *fakeBackend) reply(method, path string, status int, body string) {
	fb.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		Auth:      r.Header.Get("Authorization"),
		RequestID: r.Header.Get(RequestIDHeader),
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		require.NoError(fb.t, r.ParseMultipartForm(1<<20))
		rec.Form = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			rec.Form[k] = v[0]
		}
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			rec.FileName = files[0].Filename
		}
	} else {
		b, _ := io.ReadAll(r.Body)
		rec.Body = string(b)
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	fb.mu.Unlock()

	h, ok := fb.routes[r.Method+" "+r.URL.Path]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"status":"fail","message":"no route"}`)
		return
	}
	h(w, r)
}

func (fb *fakeBackend) calls() []recorded {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recorded(nil), fb.requests...)
}

func TestLogin(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodPost, "/api/v1/users/login", http.StatusOK,
		`{"status":"success","token":"tok-1","data":{"user":{"_id":"u1","email":"a@b.cz","role":"admin"}}}`)

	res, err := client.Login(context.Background(), "a@b.cz", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)

	calls := fb.calls()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"email":"a@b.cz","password":"Secret1!"}`, calls[0].Body)
	assert.Empty(t, calls[0].Auth)
	assert.NotEmpty(t, calls[0].RequestID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodPost, "/api/v1/users/login", http.StatusUnauthorized,
		`{"status":"fail","message":"Incorrect email or password"}`)

	_, err := client.Login(context.Background(), "a@b.cz", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCheckToken(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle(http.MethodGet, "/api/v1/users/checkToken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "Bearer good" {
			io.WriteString(w, `{"status":"success"}`)
			return
		}
		io.WriteString(w, `{"status":"fail"}`)
	})

	assert.NoError(t, client.CheckToken(context.Background(), "good"))
	assert.ErrorIs(t, client.CheckToken(context.Background(), "bad"), domain.ErrInvalidToken)
	assert.ErrorIs(t, client.CheckToken(context.Background(), ""), domain.ErrMissingToken)
}

func TestSignup_SendsInviteToken(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodPost, "/api/v1/users/signup", http.StatusCreated, `{"status":"success","message":"Welcome"}`)

	msg, err := client.Signup(context.Background(), "invite-tok", SignupInput{
		UserName: "jan", Email: "jan@b.cz", Password: "Secret1!", PasswordConfirm: "Secret1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", msg)

	calls := fb.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer invite-tok", calls[0].Auth)
	assert.JSONEq(t, `{"userName":"jan","email":"jan@b.cz","password":"Secret1!","passwordConfirm":"Secret1!"}`, calls[0].Body)
}

func TestForgotPassword(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodPost, "/api/v1/users/forgotPassword", http.StatusOK, `{"status":"success","message":"Token sent to email!"}`)

	msg, err := client.ForgotPassword(context.Background(), "a@b.cz")
	require.NoError(t, err)
	assert.Equal(t, "Token sent to email!", msg)
}

func TestGetUser_NotFound(t *testing.T) {
	_, client := newFakeBackend(t)

	_, err := client.GetUser(context.Background(), "tok", "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAPIError_Unauthorized(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodGet, "/api/v1/users/tenant", http.StatusUnauthorized, `{"status":"fail","message":"jwt expired"}`)

	_, err := client.ListTenantUsers(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "jwt expired", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestUpdateRoleAndInvite(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodPatch, "/api/v1/users/u2", http.StatusOK, `{"status":"success"}`)
	fb.reply(http.MethodPost, "/api/v1/users/invite", http.StatusOK, `{"status":"success","message":"sent"}`)

	require.NoError(t, client.UpdateRole(context.Background(), "tok", "u2", domain.RoleEditor))
	_, err := client.Invite(context.Background(), "tok", []string{"a@b.cz", "c@d.cz"})
	require.NoError(t, err)

	calls := fb.calls()
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"role":"editor"}`, calls[0].Body)
	assert.Equal(t, "Bearer tok", calls[0].Auth)
	assert.JSONEq(t, `{"email":"a@b.cz, c@d.cz"}`, calls[1].Body)
}

func TestTenants(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodGet, "/api/v1/tenants", http.StatusOK,
		`{"status":"success","data":{"tenants":[{"_id":"t1","tenantName":"Acme","users":[{"email":"owner@acme.cz"}]}]}}`)
	fb.reply(http.MethodPatch, "/api/v1/tenants/t1", http.StatusOK,
		`{"status":"success","data":{"tenant":{"_id":"t1","tenantName":"Acme 2"}}}`)

	tenants, err := client.ListTenants(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "owner@acme.cz", tenants[0].Owner())

	updated, err := client.UpdateTenant(context.Background(), "tok", "t1", domain.TenantInput{
		TenantName: "Acme 2", Domain: "acme.cz", Description: "d", Email: "owner@acme.cz",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme 2", updated.TenantName)

	calls := fb.calls()
	assert.JSONEq(t, `{"tenantName":"Acme 2","domain":"acme.cz","description":"d","email":"owner@acme.cz"}`, calls[1].Body)
}

func TestListPosts_SendsSortQuery(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodGet, "/api/v1/tenants/t1/posts", http.StatusOK,
		`{"status":"success","data":{"posts":[{"_id":"p1","title":"A"},{"_id":"p2","title":"B"}]}}`)

	posts, err := client.ListPosts(context.Background(), "tok", "t1")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, "order=desc&sort=date", fb.calls()[0].Query)
}

func TestCreatePost_Multipart(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodPost, "/api/v1/tenants/t1/posts", http.StatusCreated, `{"status":"success"}`)
	fb.reply(http.MethodPatch, "/api/v1/tenants/t1/posts/p1", http.StatusOK, `{"status":"success"}`)

	err := client.CreatePost(context.Background(), "tok", "t1", domain.PostInput{
		Title:       "Summer Sale",
		Description: "Everything half price",
		Image:       &domain.PostImage{Filename: "sale.png", Reader: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)

	err = client.UpdatePost(context.Background(), "tok", "t1", "p1", domain.PostInput{
		Title:         "Summer Sale",
		Description:   "Updated",
		ExistingImage: "sale.png",
	})
	require.NoError(t, err)

	calls := fb.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]string{"title": "Summer Sale", "slug": "summer-sale", "description": "Everything half price"}, calls[0].Form)
	assert.Equal(t, "sale.png", calls[0].FileName)
	assert.Equal(t, "Updated", calls[1].Form["description"])
	assert.Empty(t, calls[1].FileName, "image part must be omitted without a new file")
}

func TestRemovePost(t *testing.T) {
	const post = `{"status":"success","data":{"post":{"_id":"p1","imageName":"p1.jpeg"}}}`

	t.Run("deletes image then record", func(t *testing.T) {
		fb, client := newFakeBackend(t)
		fb.reply(http.MethodGet, "/api/v1/tenants/t1/posts/p1", http.StatusOK, post)
		fb.reply(http.MethodDelete, "/api/v1/posts/deleteImg/p1.jpeg", http.StatusNoContent, ``)
		fb.reply(http.MethodDelete, "/api/v1/tenants/t1/posts/p1", http.StatusNoContent, ``)

		require.NoError(t, client.RemovePost(context.Background(), "tok", "t1", "p1"))

		var order []string
		for _, c := range fb.calls() {
			order = append(order, c.Method+" "+c.Path)
		}
		assert.Equal(t, []string{
			"GET /api/v1/tenants/t1/posts/p1",
			"DELETE /api/v1/posts/deleteImg/p1.jpeg",
			"DELETE /api/v1/tenants/t1/posts/p1",
		}, order)
	})

	t.Run("image failure does not block record delete", func(t *testing.T) {
		fb, client := newFakeBackend(t)
		fb.reply(http.MethodGet, "/api/v1/tenants/t1/posts/p1", http.StatusOK, post)
		fb.reply(http.MethodDelete, "/api/v1/posts/deleteImg/p1.jpeg", http.StatusInternalServerError, `{"message":"disk"}`)
		fb.reply(http.MethodDelete, "/api/v1/tenants/t1/posts/p1", http.StatusNoContent, ``)

		require.NoError(t, client.RemovePost(context.Background(), "tok", "t1", "p1"))
		assert.Len(t, fb.calls(), 3)
	})

	t.Run("record failure after image delete is orphaned", func(t *testing.T) {
		fb, client := newFakeBackend(t)
		fb.reply(http.MethodGet, "/api/v1/tenants/t1/posts/p1", http.StatusOK, post)
		fb.reply(http.MethodDelete, "/api/v1/posts/deleteImg/p1.jpeg", http.StatusNoContent, ``)
		fb.reply(http.MethodDelete, "/api/v1/tenants/t1/posts/p1", http.StatusInternalServerError, `{"message":"boom"}`)

		err := client.RemovePost(context.Background(), "tok", "t1", "p1")
		assert.ErrorIs(t, err, domain.ErrOrphanedImage)
	})

	t.Run("record failure without image delete is plain", func(t *testing.T) {
		fb, client := newFakeBackend(t)
		fb.reply(http.MethodGet, "/api/v1/tenants/t1/posts/p1", http.StatusOK, post)
		fb.reply(http.MethodDelete, "/api/v1/posts/deleteImg/p1.jpeg", http.StatusInternalServerError, `{}`)
		fb.reply(http.MethodDelete, "/api/v1/tenants/t1/posts/p1", http.StatusInternalServerError, `{}`)

		err := client.RemovePost(context.Background(), "tok", "t1", "p1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrOrphanedImage))
	})
}

func TestConfigs(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodGet, "/api/v1/configs/key/openingHours", http.StatusOK,
		`{"status":"success","data":{"config":{"_id":"c1","config_key":"openingHours","config_value":{"monday":{"isOpen":true,"open":"08:00","close":"16:00"}}}}}`)
	fb.reply(http.MethodPatch, "/api/v1/configs/c1", http.StatusOK, `{"status":"success"}`)
	fb.reply(http.MethodPost, "/api/v1/configs", http.StatusCreated, `{"status":"success"}`)

	cfg, err := client.ConfigByKey(context.Background(), "tok", domain.OpeningHoursKey)
	require.NoError(t, err)
	var hours domain.OpeningHours
	require.NoError(t, json.Unmarshal(cfg.ConfigValue, &hours))
	assert.True(t, hours["monday"].IsOpen)

	require.NoError(t, client.UpdateConfigValue(context.Background(), "tok", "c1", json.RawMessage(`{"a":1}`)))
	require.NoError(t, client.CreateConfig(context.Background(), "tok", domain.ConfigInput{
		ConfigKey: "theme", TenantID: "t1", ConfigValue: json.RawMessage(`{}`),
	}))

	calls := fb.calls()
	assert.JSONEq(t, `{"config_value":{"a":1}}`, calls[1].Body)
	assert.JSONEq(t, `{"config_key":"theme","tenantId":"t1","config_value":{}}`, calls[2].Body)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := New(Options{BaseURL: srv.URL, Transport: http.DefaultTransport})
	_, err := client.ListTenants(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCanceledContext(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.reply(http.MethodGet, "/api/v1/tenants", http.StatusOK, `{"status":"success","data":{"tenants":[]}}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListTenants(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

// flakyTransport fails the first request of every method with a transport error.
type flakyTransport struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.calls[r.Method]++
	n := f.calls[r.Method]
	f.mu.Unlock()
	if n == 1 {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestRetry_OnlyGET(t *testing.T) {
	fb := &fakeBackend{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	fb.reply(http.MethodGet, "/api/v1/tenants", http.StatusOK, `{"status":"success","data":{"tenants":[]}}`)
	fb.reply(http.MethodDelete, "/api/v1/tenants/t1", http.StatusOK, `{"status":"success"}`)

	transport := &flakyTransport{calls: map[string]int{}}
	client := New(Options{BaseURL: srv.URL, Transport: transport, RetryCount: 2})

	_, err := client.ListTenants(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, transport.calls[http.MethodGet])

	err = client.DeleteTenant(context.Background(), "tok", "t1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, transport.calls[http.MethodDelete])
}
