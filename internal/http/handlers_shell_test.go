package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/domain/shell"
	mockauth "github.com/payassure/payassure-web/internal/mocks/auth"
	"github.com/payassure/payassure-web/internal/service"
	"github.com/payassure/payassure-web/internal/testutil"
)

// fakeEnricher records triggers and reports a fixed pending state.
type fakeEnricher struct {
	mu        sync.Mutex
	pending   bool
	triggered []string
}

func (f *fakeEnricher) Trigger(sess domainauth.Session) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !sess.NeedsEnrichment() {
		return false, nil
	}
	f.triggered = append(f.triggered, sess.ID)
	return true, nil
}

func (f *fakeEnricher) Pending(string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func navLabels(t *testing.T, body string) string {
	t.Helper()
	text, ok, err := testutil.TextContent(strings.NewReader(body), "shell-nav")
	require.NoError(t, err)
	require.True(t, ok)
	return text
}

func TestShell_RoleNavigation(t *testing.T) {
	tests := []struct {
		role    string
		want    []string
		notWant []string
	}{
		{"admin", []string{"Dashboard", "Customers", "Insurers", "Policies", "Payments", "Profile"}, []string{"Claims"}},
		{"customer", []string{"Dashboard", "Policies", "Payments", "Claims", "Profile"}, []string{"Customers", "Insurers"}},
		{"insurer", []string{"Dashboard", "Policies", "Customers", "Claims", "Profile"}, []string{"Payments", "Insurers"}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			app := newTestApp(t, testAppOptions{})
			sid := app.login(t, domainauth.User{ID: "1", Name: "Pat Lee", Role: tt.role})

			rec := app.do(t, testRequest{Path: "/app", Session: sid})
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			labels := navLabels(t, rec.Body.String())
			for _, w := range tt.want {
				assert.Contains(t, labels, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, labels, nw)
			}
			assert.Contains(t, rec.Body.String(), `aria-current="page"`)
			assert.Contains(t, rec.Body.String(), "<title>Dashboard - PayAssure</title>")
		})
	}
}

func TestShell_RendersEveryRoleView(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	for role, cfg := range shell.DefaultTable() {
		sid := app.login(t, domainauth.User{ID: string(role), Name: "Sam Park", Email: "sam@example.com", Role: string(role)})
		for _, item := range cfg.Nav {
			rec := app.do(t, testRequest{Path: item.Href(), Session: sid})
			assert.Equal(t, http.StatusOK, rec.Code, "%s %s", role, item.Path)
			title, ok, err := testutil.TextContent(strings.NewReader(rec.Body.String()), "shell-main")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Contains(t, title, item.Label)
		}
	}
}

func TestShell_UnknownSubPathIsNotFoundInsideShell(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	sid := app.login(t, domainauth.User{ID: "1", Name: "Cy", Role: "customer"})

	for _, p := range []string{"/app/nope", "/app/insurers", "/app/policies/42"} {
		rec := app.do(t, testRequest{Path: p, Session: sid})
		assert.Equal(t, http.StatusNotFound, rec.Code, p)
		body := rec.Body.String()
		assert.Contains(t, body, `id="shell-nav"`, "navigation stays available")
		assert.Contains(t, body, "Page not found")
		assert.NotContains(t, body, `aria-current="page"`)
	}
}

func TestShell_UnknownRoleHasNoNavigation(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	sid := app.login(t, domainauth.User{ID: "1", Name: "Ola", Role: "auditor"})

	rec := app.do(t, testRequest{Path: "/app/dashboard", Session: sid})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, navLabels(t, rec.Body.String()), "No sections are available")
}

func TestShell_PartialRenderForMainPane(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	sid := app.login(t, domainauth.User{ID: "1", Name: "Ada", Role: "admin"})

	rec := app.do(t, testRequest{Path: "/app/insurers", Session: sid, HTMX: true,
		Headers: map[string]string{"Hx-Target": "shell-main"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := strings.TrimSpace(rec.Body.String())
	assert.True(t, strings.HasPrefix(body, `<main id="shell-main"`), body)
	assert.NotContains(t, body, "shell-nav")

	var trig map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("Hx-Trigger")), &trig))
	assert.Equal(t, map[string]string{"path": "/app/insurers", "title": "Insurers - PayAssure"}, trig["nav:activate"])
}

func TestShell_RequiresSession(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	rec := app.do(t, testRequest{Path: "/app/dashboard"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.do(t, testRequest{Path: "/app/dashboard", HTMX: true})
	assert.Equal(t, "/login", rec.Header().Get("Hx-Redirect"))
}

func TestNavigate(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	sid := app.login(t, domainauth.User{ID: "1", Name: "Ada", Role: "admin"})

	tests := []struct {
		to   string
		want string
	}{
		{"policies", "/app/policies"},
		{"/payments/", "/app/payments"},
		{"", "/app/dashboard"},
		{"../../admin", "/app/admin"},
	}
	for _, tt := range tests {
		rec := app.do(t, testRequest{Method: http.MethodPost, Path: "/app/navigate", Session: sid, Form: url.Values{"to": {tt.to}}})
		assert.Equal(t, http.StatusSeeOther, rec.Code, tt.to)
		assert.Equal(t, tt.want, rec.Header().Get("Location"), tt.to)
	}

	rec := app.do(t, testRequest{Method: http.MethodPost, Path: "/app/navigate", Session: sid, HTMX: true, Form: url.Values{"to": {"claims"}}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"/app/claims","target":"#shell-main","swap":"outerHTML"}`, rec.Header().Get("Hx-Location"))
}

func TestShell_TriggersEnrichmentAndPollsUserCard(t *testing.T) {
	enr := &fakeEnricher{pending: true}
	app := newTestApp(t, testAppOptions{Enricher: enr})
	sid := app.login(t, domainauth.User{ID: "42", Role: "insurer"})

	rec := app.do(t, testRequest{Path: "/app", Session: sid})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{sid}, enr.triggered)
	assert.Contains(t, rec.Body.String(), `hx-get="/session/user"`)

	card := app.do(t, testRequest{Path: "/session/user", Session: sid, HTMX: true})
	require.Equal(t, http.StatusOK, card.Code)
	assert.Contains(t, card.Body.String(), `hx-get="/session/user"`, "keeps polling while pending")

	enr.mu.Lock()
	enr.pending = false
	enr.mu.Unlock()
	card = app.do(t, testRequest{Path: "/session/user", Session: sid, HTMX: true})
	assert.NotContains(t, card.Body.String(), "hx-get")
	assert.Equal(t, "no-store", card.Header().Get("Cache-Control"))
}

func TestShell_EnrichedNameReachesUserCard(t *testing.T) {
	be := &mockauth.StubBackend{
		FetchUserFunc: func(_ context.Context, role domainauth.Role, id string) (domainauth.User, error) {
			assert.Equal(t, domainauth.RoleInsurer, role)
			return domainauth.User{ID: id, Name: "Grace Hopper", Email: "grace@example.com"}, nil
		},
	}
	store := mockauth.NewMemorySessionStore()
	enr := service.NewEnrichmentService(service.EnrichmentServiceOptions{Backend: be, Sessions: store})
	app := newTestApp(t, testAppOptions{Backend: be, Enricher: enr, Sessions: store})
	sid := app.login(t, domainauth.User{ID: "42", Role: "insurer"})

	rec := app.do(t, testRequest{Path: "/app/profile", Session: sid})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, enr.Shutdown(context.Background()))

	card := app.do(t, testRequest{Path: "/session/user", Session: sid, HTMX: true})
	require.Equal(t, http.StatusOK, card.Code)
	text, ok, err := testutil.TextContent(strings.NewReader(card.Body.String()), "user-card")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, text, "Grace Hopper")
	assert.Contains(t, text, "GH")
	assert.Equal(t, 1, be.Calls("FetchUser"))
}

func TestUserView(t *testing.T) {
	v := userView(&domainauth.Session{
		Role: domainauth.RoleAdmin,
		User: domainauth.User{ID: "5", Email: "mary.jane@example.com"},
	})
	assert.Equal(t, "admin", v.Role)
	assert.Equal(t, "mary.jane@example.com", v.DisplayName)
	assert.Equal(t, "MJ", v.Initials)

	assert.Equal(t, "?", initials(domainauth.User{ID: "1"}))
	assert.Equal(t, "AL", initials(domainauth.User{Name: "ada lovelace king"}))
}
