package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	payassure "github.com/payassure/payassure-web"
	"github.com/payassure/payassure-web/internal/domain/shell"
	"github.com/payassure/payassure-web/internal/domain/theme"
	"github.com/payassure/payassure-web/internal/observability/metrics"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth           AuthService
	Enricher       Enricher     // optional; nil disables background user enrichment
	Routes         shell.Table  // nil: shell.DefaultTable()
	DefaultTheme   theme.Mode   // theme for visitors without a theme cookie
	CookieDomain   string
	HTTPMetrics    *metrics.HTTPMetrics // optional
	MetricsHandler http.Handler         // optional; served at GET /metrics
	IsDev          bool                 // read templates and assets from disk
	Logger         *slog.Logger
}

// NewRouter creates and configures the portal's HTTP handler.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil {
		return nil, errors.New("router: auth service is required")
	}
	if services.Routes == nil {
		services.Routes = shell.DefaultTable()
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := frontendFS(services.IsDev)
	if err != nil {
		return nil, err
	}
	assets := newAssetVersioner(staticFS, services.IsDev)
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Asset:      assets.URL,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("router: load templates: %w", err)
	}

	ui := &UIHandlers{
		T: tr,
		Shell: ShellConfig{
			Routes:   services.Routes,
			Enricher: services.Enricher,
			Sessions: services.Auth,
		},
		IsDev:  services.IsDev,
		Logger: logger,
	}
	auth := &AuthHandlers{Svc: services.Auth, T: tr, CookieDomain: services.CookieDomain, Logger: logger}
	themes := &ThemeHandlers{CookieDomain: services.CookieDomain}

	mux := http.NewServeMux()
	cfg := routeConfig{Sessions: services.Auth, Logger: logger}
	registerPublicRoutes(mux, ui, cfg)
	registerAuthRoutes(mux, auth, cfg)
	registerShellRoutes(mux, ui, cfg)
	mux.HandleFunc("POST /theme/toggle", themes.Toggle)
	mux.HandleFunc("GET /healthz", healthHandler)
	if services.MetricsHandler != nil {
		mux.Handle("GET /metrics", services.MetricsHandler)
	}
	mux.Handle("GET /static/", staticHandler(staticFS))

	var inner http.Handler = mux
	if services.HTTPMetrics != nil {
		inner = services.HTTPMetrics.Middleware(mux)
	}
	var handler http.Handler = &notFoundHandler{next: inner, ui: ui, logger: logger}
	// Every page carries a CSRF token and every state-changing request is checked.
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	handler = ThemeMiddleware(services.DefaultTheme)(handler)
	return BrowserDetection()(handler), nil
}

// frontendFS returns the template and static filesystems: disk in dev mode, embedded otherwise.
func frontendFS(isDev bool) (fs.FS, fs.FS, error) {
	if isDev {
		return os.DirFS(TemplatePathFromRoot), os.DirFS(StaticPathFromRoot), nil
	}
	templateFS, err := fs.Sub(payassure.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("router: template filesystem: %w", err)
	}
	staticFS, err := fs.Sub(payassure.StaticFS, StaticPathFromRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("router: static filesystem: %w", err)
	}
	return templateFS, staticFS, nil
}

// routeConfig holds the middleware shared by route groups.
type routeConfig struct {
	Sessions SessionReader
	Logger   *slog.Logger
}

// authed wraps h so it requires a session and is never cached.
func (cfg routeConfig) authed(h http.HandlerFunc) http.Handler {
	return RequireAuthBrowser(cfg.Sessions, cfg.Logger)(NoStore(h))
}

// public wraps h so it sees the session when one is present.
func (cfg routeConfig) public(h http.HandlerFunc) http.Handler {
	return OptionalAuth(cfg.Sessions, cfg.Logger)(h)
}

func registerPublicRoutes(mux *http.ServeMux, ui *UIHandlers, cfg routeConfig) {
	mux.Handle("GET /{$}", cfg.public(ui.Landing))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, cfg routeConfig) {
	mux.Handle("GET /login", cfg.public(h.LoginPage))
	mux.HandleFunc("POST /login", h.Login)
	mux.Handle("GET /forgot-password", cfg.public(h.ForgotPage))
	mux.HandleFunc("POST /forgot-password", h.ForgotPassword)
	mux.Handle("GET /reset-password", cfg.public(h.ResetPage))
	mux.HandleFunc("POST /reset-password", h.ResetPassword)
	mux.HandleFunc("POST /logout", h.Logout)
}

func registerShellRoutes(mux *http.ServeMux, ui *UIHandlers, cfg routeConfig) {
	mux.Handle("GET /app", cfg.authed(ui.App))
	mux.Handle("GET /app/{path...}", cfg.authed(ui.App))
	mux.Handle("POST /app/navigate", cfg.authed(ui.Navigate))
	mux.Handle("GET /session/user", cfg.authed(ui.UserCard))
}

// notFoundHandler renders the portal 404 page for requests no route matched.
// A 404 written by a matched route (the shell placeholder, a missing static file)
// is passed through unchanged.
type notFoundHandler struct {
	next   http.Handler
	ui     *UIHandlers
	logger *slog.Logger
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter()
	// ServeMux records the matched pattern on r; it stays empty when nothing matched.
	h.next.ServeHTTP(cw, r)

	if cw.status == http.StatusNotFound && r.Pattern == "" {
		h.ui.NotFound(w, r)
		return
	}
	cw.flushTo(w, h.logger)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter, logger *slog.Logger) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		logger.Debug("failed to write captured response", "error", err)
	}
}
