package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/payassure/payassure-web/internal/domain/theme"
)

const themeCookieMaxAge = 365 * 24 * time.Hour

// ThemeMiddleware reads the theme cookie once per request and stores the mode in the context.
// Requests without the cookie get fallback.
func ThemeMiddleware(fallback theme.Mode) func(http.Handler) http.Handler {
	if fallback == "" {
		fallback = theme.Light
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mode := fallback
			if c, err := r.Cookie(theme.CookieName); err == nil && c.Value != "" {
				mode = theme.Parse(c.Value)
			}
			next.ServeHTTP(w, r.WithContext(SetThemeInContext(r.Context(), mode)))
		})
	}
}

// ThemeHandlers serves the theme toggle.
type ThemeHandlers struct {
	CookieDomain string
}

// Toggle flips the theme and persists it.
// htmx callers get 204 with a theme:changed event so the page is not reloaded and
// form input survives; plain form posts are redirected back where they came from.
// POST /theme/toggle.
func (h *ThemeHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	next := ThemeFromContext(r.Context()).Toggle()

	http.SetCookie(w, &http.Cookie{
		Name:     theme.CookieName,
		Value:    next.String(),
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: false, // app.js mirrors it into data-theme
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(themeCookieMaxAge.Seconds()),
	})

	if IsHTMX(r) {
		HTMX(w).Trigger("theme:changed", map[string]string{"mode": next.String()}).NoContent()
		return
	}
	http.Redirect(w, r, refererPath(r), http.StatusSeeOther)
}

// refererPath returns the same-origin path of the Referer header, or "/".
func refererPath(r *http.Request) string {
	raw := r.Header.Get("Referer")
	if raw == "" {
		return pathLanding
	}
	u, err := url.Parse(raw)
	if err != nil {
		return pathLanding
	}
	if u.IsAbs() && !strings.EqualFold(u.Host, r.Host) {
		return pathLanding
	}
	return safeRedirectPath(u.RequestURI())
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute or scheme-relative URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return pathLanding
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(candidate, "//") || strings.Contains(candidate, "\\") {
		return pathLanding
	}
	return candidate
}
