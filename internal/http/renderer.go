package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	corefuncs "github.com/payassure/payassure-web/internal/http/templates/core"
	"github.com/payassure/payassure-web/internal/http/ui/viewmodel"
)

var errPageNotFound = errors.New("page template not found")

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS               // Filesystem containing templates (required)
	Asset      func(string) string // Maps a logical asset name to its URL (optional)
	Logger     *slog.Logger        // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing every template in cfg.TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer := &TemplateRenderer{logger: logger}

	var t *template.Template
	funcs := corefuncs.Funcs(corefuncs.Deps{Template: &t, Asset: cfg.Asset})
	var err error
	t, err = template.New("root").Funcs(funcs).ParseFS(cfg.TemplateFS,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
		"views/*.tmpl",
	)
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	renderer.t = t
	return renderer, nil
}

// Has reports whether a template with the given name was parsed.
func (r *TemplateRenderer) Has(name string) bool {
	return r != nil && r.t != nil && r.t.Lookup(name) != nil
}

// RenderFull renders the full page (layout + page content).
// Data exposing layout metadata must name a page template that exists.
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, status int, data any) error {
	if lp, ok := data.(viewmodel.LayoutProvider); ok {
		if page := lp.LayoutData().Page; page != "" && !r.Has(page) {
			r.logger.Error("page template not found", slog.String("page", page))
			return fmt.Errorf("render page %q: %w", page, errPageNotFound)
		}
	}
	return r.Render(w, RenderSpec{Name: "layout", Status: status, Data: data})
}

// RenderSpec names a template, the status to send and the data to execute it with.
type RenderSpec struct {
	Name   string
	Status int
	Data   any
}

// Render executes spec.Name into a buffer so a failing template never leaves a half-written page.
func (r *TemplateRenderer) Render(w http.ResponseWriter, spec RenderSpec) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, spec.Name, spec.Data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", spec.Name),
			slog.Any("error", err),
		)
		return err
	}

	status := spec.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", spec.Name),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
