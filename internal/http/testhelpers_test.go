package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	mockauth "github.com/payassure/payassure-web/internal/mocks/auth"
	"github.com/payassure/payassure-web/internal/service"
)

// testCSRFToken is sent as both cookie and form field by the request helpers.
const testCSRFToken = "test-csrf-token"

// RequireTemplateRenderer parses the on-disk templates for tests.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return tr
}

// testApp is a fully wired router over an in-memory session store and a stub backend.
type testApp struct {
	Handler  http.Handler
	Backend  *mockauth.StubBackend
	Sessions *mockauth.MemorySessionStore
	Auth     *service.AuthService
}

// testAppOptions customizes newTestApp.
type testAppOptions struct {
	Backend  *mockauth.StubBackend
	Sessions *mockauth.MemorySessionStore
	Enricher Enricher
	Services func(*RouterServices)
}

func newTestApp(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()
	be := opts.Backend
	if be == nil {
		be = &mockauth.StubBackend{}
	}
	store := opts.Sessions
	if store == nil {
		store = mockauth.NewMemorySessionStore()
	}
	authSvc := service.NewAuthService(service.AuthServiceOptions{Backend: be, Sessions: store})

	rs := RouterServices{
		Auth:     authSvc,
		Enricher: opts.Enricher,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if opts.Services != nil {
		opts.Services(&rs)
	}
	h, err := NewRouter(rs)
	require.NoError(t, err)
	return &testApp{Handler: h, Backend: be, Sessions: store, Auth: authSvc}
}

// login stores a session for user and returns its id.
func (a *testApp) login(t *testing.T, user domainauth.User) string {
	t.Helper()
	sess := domainauth.Session{
		ID:              "sess-" + user.ID,
		User:            user,
		Role:            domainauth.ParseRole(user.Role),
		EnrichAttempted: user.Name != "",
		CreatedAt:       time.Now(),
		ExpiresAt:       time.Now().Add(time.Hour),
	}
	require.NoError(t, a.Sessions.Save(context.Background(), sess))
	return sess.ID
}

// testRequest describes a request issued against a testApp.
type testRequest struct {
	Method  string
	Path    string
	Form    url.Values // sent urlencoded with the CSRF field added
	Session string
	HTMX    bool
	Headers map[string]string
	Cookies []*http.Cookie
}

func (a *testApp) do(t *testing.T, tr testRequest) *httptest.ResponseRecorder {
	t.Helper()
	method := tr.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if tr.Form != nil {
		form := url.Values{}
		for k, v := range tr.Form {
			form[k] = v
		}
		form.Set(DefaultCSRFCookieName, testCSRFToken)
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, tr.Path, body)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	if tr.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	if tr.Session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tr.Session})
	}
	for _, c := range tr.Cookies {
		req.AddCookie(c)
	}
	if tr.HTMX {
		req.Header.Set("Hx-Request", "true")
	}
	for k, v := range tr.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	return rec
}

// responseCookie returns the named cookie set on rec, or nil.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
