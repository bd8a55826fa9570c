package httpx

import "time"

// Content template names rendered inside the layout.
const (
	PageLanding  = "landing-content"
	PageLogin    = "login-content"
	PageForgot   = "forgot-password-content"
	PageReset    = "reset-password-content"
	PageShell    = "shell-content"
	PageError    = "error-content"
	formLogin    = "login-form"
	formForgot   = "forgot-password-form"
	formReset    = "reset-password-form"
	shellMain    = "shell-main"
	userCardTmpl = "user-card"
)

// formPartials maps an auth page to the form fragment htmx submits swap.
var formPartials = map[string]string{
	PageLogin:  formLogin,
	PageForgot: formForgot,
	PageReset:  formReset,
}

// Cookie names.
const (
	SessionCookieName = "session_id"
	flashCookieName   = "flash"
)

// Portal locations.
const (
	pathLanding       = "/"
	pathLogin         = "/login"
	pathForgot        = "/forgot-password"
	pathReset         = "/reset-password"
	pathAfterLogin    = "/app/dashboard"
	shellMainTargetID = "shell-main"
)

// Messages shown when the backend gives none.
const (
	MsgLoginFailed  = "Login failed. Please check your credentials."
	MsgForgotFailed = "Failed to send OTP. Please try again."
	MsgResetFailed  = "Failed to reset password. Please try again."
	MsgOTPSent      = "OTP sent to your email."
	MsgResetDone    = "Password reset successful. Redirecting to login..."
)

// resetRedirectDelay is how long the reset success message stays before moving to login.
const resetRedirectDelay = 2 * time.Second

// Template paths used for loading templates in tests and dev mode.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
)

const siteName = "PayAssure"

func pageTitle(title string) string {
	if title == "" {
		return siteName
	}
	return title + " - " + siteName
}
