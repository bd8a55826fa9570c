// Package core provides the template helpers shared by every portal page.
package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Deps holds dependencies for constructing the core template func map.
// Template points at the parsed set so helpers can render other templates by name.
type Deps struct {
	Template **template.Template
	Asset    func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"friendlyDate": friendlyDate,
		"timeTag":      timeTag,
		"asset":        assetFunc(deps.Asset),
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func assetFunc(resolve func(string) string) func(string) string {
	return func(name string) string {
		if resolve == nil {
			return "/static/" + strings.TrimPrefix(name, "/")
		}
		return resolve(name)
	}
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	lookup := func() (*template.Template, error) {
		if deps.Template == nil || *deps.Template == nil {
			return nil, errors.New("template not initialized")
		}
		return *deps.Template, nil
	}

	funcs["renderSection"] = func(name string, data any) (template.HTML, error) {
		t, err := lookup()
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, name, data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during execution.
		return template.HTML(buf.String()), nil
	}
}

func asTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

// friendlyDate renders a calendar date such as "Mar 4, 2024"; zero times render empty.
func friendlyDate(ts any) string {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006")
}

func timeTag(ts any) template.HTML {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - constructed from escaped values only
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t.Local().Format(time.RFC1123)),
		template.HTMLEscapeString(t.Local().Format("Jan 2, 2006")),
	))
}
