package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/domain/shell"
	"github.com/payassure/payassure-web/internal/http/ui/viewmodel"
	"github.com/payassure/payassure-web/internal/service"
)

var errNotFound = errors.New("not found")

// Enricher fills in missing user details in the background.
type Enricher interface {
	Trigger(sess domainauth.Session) (bool, error)
	Pending(sessionID string) bool
}

var _ Enricher = (*service.EnrichmentService)(nil)

// ShellConfig wires the role route table and optional enrichment into the session shell.
// Sessions, when set, lets the user card re-read a session whose enrichment
// finished after the request's session was loaded.
type ShellConfig struct {
	Routes   shell.Table
	Enricher Enricher
	Sessions SessionReader
}

// App renders the session shell: the role's navigation around the view for the current sub-path.
// Unknown sub-paths render a not-found placeholder inside the shell with status 404.
// GET /app, GET /app/{path...}.
func (h *UIHandlers) App(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}

	enriching := h.enrichmentPending(r, sess)
	subPath := shell.NormalizeSubPath(r.URL.Path)
	cfg := h.Shell.Routes.Lookup(sess.Role)
	view, ok := cfg.Resolve(subPath)
	notFound := !ok || !h.T.Has(view.Template)

	title := view.Title
	if notFound {
		title = "Not found"
	}
	data := &viewmodel.Shell{
		Layout:    newLayout(r, title, PageShell),
		Nav:       navLinks(cfg, subPath),
		SubPath:   subPath,
		View:      view.Template,
		ViewTitle: title,
		NotFound:  notFound,
		Enriching: enriching,
	}
	status := http.StatusOK
	if notFound {
		status = http.StatusNotFound
	}

	if IsHTMX(r) && HXTarget(r) == shellMainTargetID {
		HTMX(w).Trigger("nav:activate", map[string]string{
			"path":  shell.MountPrefix + "/" + subPath,
			"title": data.Title,
		})
		if err := h.T.Render(w, RenderSpec{Name: shellMain, Status: status, Data: data}); err != nil {
			h.logAndRenderTemplateError(w, r, err, "shell partial render")
		}
		return
	}
	if err := h.T.RenderFull(w, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "shell render")
	}
}

// enrichmentPending starts enrichment when the session needs it and reports
// whether a background fetch is still outstanding.
func (h *UIHandlers) enrichmentPending(r *http.Request, sess *domainauth.Session) bool {
	e := h.Shell.Enricher
	if e == nil {
		return false
	}
	if !sess.NeedsEnrichment() {
		return e.Pending(sess.ID)
	}
	started, err := e.Trigger(*sess)
	if err != nil {
		h.logger().WarnContext(r.Context(), "user enrichment not started", "error", err)
		return false
	}
	return started
}

func navLinks(cfg shell.RoleConfig, subPath string) []viewmodel.NavLink {
	links := make([]viewmodel.NavLink, 0, len(cfg.Nav))
	for _, item := range cfg.Nav {
		links = append(links, viewmodel.NavLink{
			Label:  item.Label,
			Href:   item.Href(),
			Path:   item.Path,
			Icon:   item.Icon,
			Active: item.Path == subPath,
		})
	}
	return links
}

// Navigate moves the shell to another sub-path. Plain posts get a 303; htmx
// requests get Hx-Location so only the main pane is swapped and history is pushed.
// POST /app/navigate.
func (h *UIHandlers) Navigate(w http.ResponseWriter, r *http.Request) {
	_, location := shell.Navigate(r.PostFormValue("to"))
	if IsHTMX(r) {
		HTMX(w).Location(HXLocation{Path: location, Target: "#" + shellMainTargetID, Swap: "outerHTML"})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// UserCard renders the header user card. While enrichment is outstanding the
// fragment polls itself until the full record arrives.
// GET /session/user.
func (h *UIHandlers) UserCard(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}
	pending := h.Shell.Enricher != nil && h.Shell.Enricher.Pending(sess.ID)
	if !pending && h.Shell.Sessions != nil {
		if fresh, err := h.Shell.Sessions.GetSession(r.Context(), sess.ID); err == nil {
			sess = fresh
		}
	}
	w.Header().Set("Cache-Control", "no-store")
	card := &viewmodel.UserCard{User: userView(sess), Enriching: pending}
	if err := h.T.Render(w, RenderSpec{Name: userCardTmpl, Status: http.StatusOK, Data: card}); err != nil {
		h.logAndRenderTemplateError(w, r, err, "user card render")
	}
}
