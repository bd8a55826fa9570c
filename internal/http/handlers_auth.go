package httpx

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/payassure/payassure-web/internal/adapters/backend"
	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/http/ui/viewmodel"
	"github.com/payassure/payassure-web/internal/ports"
	"github.com/payassure/payassure-web/internal/service"
)

// AuthService defines the auth operations the handlers need.
type AuthService interface {
	SessionReader
	Login(ctx context.Context, in ports.LoginInput) (*service.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in ports.ResetInput) (string, error)
	Logout(ctx context.Context, sessionID string) error
}

var _ AuthService = (*service.AuthService)(nil)

// AuthHandlers serves the login, forgot-password and reset-password views plus logout.
type AuthHandlers struct {
	Svc          AuthService
	T            *TemplateRenderer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// formResult pairs a form view with the status it is rendered with.
type formResult struct {
	Form   *viewmodel.AuthForm
	Status int
}

// render writes the whole page, or only the form fragment for htmx submits.
func (h *AuthHandlers) render(w http.ResponseWriter, r *http.Request, res formResult) {
	var err error
	if IsHTMX(r) {
		err = h.T.Render(w, RenderSpec{Name: formPartials[res.Form.Page], Status: res.Status, Data: res.Form})
	} else {
		err = h.T.RenderFull(w, res.Status, res.Form)
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *AuthHandlers) newForm(r *http.Request, title, page, action string) *viewmodel.AuthForm {
	return &viewmodel.AuthForm{
		Layout: newLayout(r, title, page),
		Action: action,
	}
}

// failure fills in the message for a failed backend call and returns the status to render with.
func (h *AuthHandlers) failure(r *http.Request, form *viewmodel.AuthForm, err error, fallback string) int {
	form.Error = backend.MessageOr(err, fallback)
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "auth request failed", "action", form.Action, "error", err)
	} else {
		h.logger().InfoContext(r.Context(), "auth request rejected", "action", form.Action, "status", status)
	}
	return status
}

// LoginPage renders the login form. Signed-in users go straight to the portal.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if IsAuthenticated(r.Context()) {
		http.Redirect(w, r, pathAfterLogin, http.StatusSeeOther)
		return
	}
	form := h.newForm(r, "Sign in", PageLogin, pathLogin)
	form.SubmitDisabled = true
	h.render(w, r, formResult{Form: form, Status: http.StatusOK})
}

// Login verifies credentials, opens a session and enters the portal.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	form := h.newForm(r, "Sign in", PageLogin, pathLogin)
	form.Email = email
	if email == "" || password == "" {
		form.SubmitDisabled = true
		h.render(w, r, formResult{Form: form, Status: http.StatusUnprocessableEntity})
		return
	}

	res, err := h.Svc.Login(r.Context(), ports.LoginInput{Email: email, Password: password})
	if err != nil {
		status := h.failure(r, form, err, MsgLoginFailed)
		h.render(w, r, formResult{Form: form, Status: status})
		return
	}

	h.setSessionCookie(w, r, res.Session)
	h.logger().InfoContext(r.Context(), "login succeeded", "user_id", res.Session.User.ID, "role", res.Session.Role)
	if IsHTMX(r) {
		HTMX(w).Redirect(pathAfterLogin)
		return
	}
	http.Redirect(w, r, pathAfterLogin, http.StatusSeeOther)
}

// ForgotPage renders the forgot-password form.
// GET /forgot-password.
func (h *AuthHandlers) ForgotPage(w http.ResponseWriter, r *http.Request) {
	form := h.newForm(r, "Forgot password", PageForgot, pathForgot)
	form.Email = strings.TrimSpace(r.URL.Query().Get("email"))
	form.SubmitDisabled = form.Email == ""
	h.render(w, r, formResult{Form: form, Status: http.StatusOK})
}

// ForgotPassword asks the backend for an OTP and moves on to the reset form with the email carried along.
// POST /forgot-password.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))

	form := h.newForm(r, "Forgot password", PageForgot, pathForgot)
	form.Email = email
	if email == "" {
		form.SubmitDisabled = true
		h.render(w, r, formResult{Form: form, Status: http.StatusUnprocessableEntity})
		return
	}

	msg, err := h.Svc.ForgotPassword(r.Context(), email)
	if err != nil {
		status := h.failure(r, form, err, MsgForgotFailed)
		h.render(w, r, formResult{Form: form, Status: status})
		return
	}
	if msg == "" {
		msg = MsgOTPSent
	}
	h.setFlash(w, r, msg)

	next := pathReset + "?" + url.Values{"email": {email}}.Encode()
	if IsHTMX(r) {
		HTMX(w).Redirect(next)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// ResetPage renders the reset-password form. An email carried over from the
// forgot-password step is shown read-only.
// GET /reset-password.
func (h *AuthHandlers) ResetPage(w http.ResponseWriter, r *http.Request) {
	form := h.newForm(r, "Reset password", PageReset, pathReset)
	form.Email = strings.TrimSpace(r.URL.Query().Get("email"))
	form.EmailLocked = form.Email != ""
	form.Success = h.popFlash(w, r)
	form.SubmitDisabled = true
	h.render(w, r, formResult{Form: form, Status: http.StatusOK})
}

// ResetPassword completes the OTP reset and, on success, sends the user to login after a short delay.
// POST /reset-password.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	in := ports.ResetInput{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		OTP:         strings.TrimSpace(r.PostFormValue("otp")),
		NewPassword: r.PostFormValue("newPassword"),
	}

	form := h.newForm(r, "Reset password", PageReset, pathReset)
	form.Email = in.Email
	form.EmailLocked = in.Email != "" && r.PostFormValue("email_locked") == "true"
	if in.Email == "" || in.OTP == "" || in.NewPassword == "" {
		form.SubmitDisabled = true
		h.render(w, r, formResult{Form: form, Status: http.StatusUnprocessableEntity})
		return
	}

	msg, err := h.Svc.ResetPassword(r.Context(), in)
	if err != nil {
		status := h.failure(r, form, err, MsgResetFailed)
		h.render(w, r, formResult{Form: form, Status: status})
		return
	}
	if msg == "" {
		msg = MsgResetDone
	}
	form.Success = msg
	form.SubmitDisabled = true
	form.RedirectTo = pathLogin
	form.MetaRefresh = fmt.Sprintf("%d;url=%s", int(resetRedirectDelay.Seconds()), pathLogin)

	if IsHTMX(r) {
		HTMX(w).Trigger("redirect", map[string]any{
			"to":    pathLogin,
			"delay": resetRedirectDelay.Milliseconds(),
		})
	}
	h.render(w, r, formResult{Form: form, Status: http.StatusOK})
}

// Logout deletes the server-side session and returns to the landing page.
// htmx callers get a session:ended event; app.js replaces the history entry so
// back navigation cannot re-enter the portal.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		if logoutErr := h.Svc.Logout(r.Context(), c.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, SessionCookieName, "/")
	w.Header().Set("Cache-Control", "no-store")

	if IsHTMX(r) {
		HTMX(w).Trigger("session:ended", map[string]string{"location": pathLanding}).NoContent()
		return
	}
	http.Redirect(w, r, pathLanding, http.StatusSeeOther)
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if s.ExpiresAt.IsZero() {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearCookie expires a cookie, mirroring the attributes it was set with so every browser drops it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlash stores a one-shot message for the reset-password page.
func (h *AuthHandlers) setFlash(w http.ResponseWriter, r *http.Request, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     pathReset,
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash returns and clears the one-shot message, if any.
func (h *AuthHandlers) popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	h.clearCookie(w, r, flashCookieName, pathReset)
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(b)
}
