package httpx

import (
	"html"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/http/ui/viewmodel"
)

// newLayout constructs shared layout metadata from the request context.
func newLayout(r *http.Request, title, page string) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:     pageTitle(title),
		Page:      page,
		Theme:     ThemeFromContext(r.Context()).String(),
		CSRFToken: GetCSRFToken(r),
	}
	if session := GetSessionFromContext(r.Context()); session != nil {
		layout.IsAuthenticated = true
		layout.User = userView(session)
	}
	return layout
}

// userView projects the session user into the template model.
func userView(s *domainauth.Session) *viewmodel.User {
	u := s.User
	role := u.Role
	if role == "" {
		role = string(s.Role)
	}
	return &viewmodel.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        strings.ToLower(role),
		DisplayName: u.DisplayName(),
		Initials:    initials(u),
		MemberSince: u.CreatedAt,
	}
}

// initials returns up to two upper-case letters for the avatar.
func initials(u domainauth.User) string {
	source := u.Name
	if source == "" {
		source, _, _ = strings.Cut(u.Email, "@")
	}
	var out []rune
	for _, word := range strings.FieldsFunc(source, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '_' || r == '-'
	}) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// UIHandlers serves browser-facing pages outside the auth forms.
type UIHandlers struct {
	T      *TemplateRenderer
	Shell  ShellConfig
	IsDev  bool // Development mode flag for enhanced error reporting
	Logger *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Landing renders the public landing page.
// GET /.
func (h *UIHandlers) Landing(w http.ResponseWriter, r *http.Request) {
	layout := newLayout(r, "", PageLanding)
	if err := h.T.RenderFull(w, http.StatusOK, &layout); err != nil {
		h.logAndRenderTemplateError(w, r, err, "landing render")
	}
}

// NotFound handles unmatched routes. Browsers get the 404 page, API clients JSON.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errNotFound,
		})
		return
	}

	page := &viewmodel.ErrorPage{
		Layout:  newLayout(r, "Page not found", PageError),
		Code:    "404",
		Heading: "Page not found",
		Message: "The page you're looking for doesn't exist.",
	}
	if err := h.T.RenderFull(w, http.StatusNotFound, page); err != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
	}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(
			`<pre class="template-error">` + html.EscapeString(context+": "+err.Error()) + `</pre>`,
		)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
