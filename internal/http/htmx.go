package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// HXTarget returns the id of the target element being updated.
func HXTarget(r *http.Request) string { return r.Header.Get("Hx-Target") }

// SetHXRedirect instructs htmx to perform a full page navigation to url.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// SetHXPushURL pushes the given URL into the browser history for the new content.
func SetHXPushURL(w http.ResponseWriter, url string) { w.Header().Set("Hx-Push-Url", url) }

// HXLocation is the JSON form of the Hx-Location header.
type HXLocation struct {
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`
	Select string `json:"select,omitempty"`
	Swap   string `json:"swap,omitempty"`
}

// SetHXLocation asks htmx to load loc with an ajax GET and push it into history.
func SetHXLocation(w http.ResponseWriter, loc HXLocation) {
	if loc.Target == "" && loc.Select == "" && loc.Swap == "" {
		w.Header().Set("Hx-Location", loc.Path)
		return
	}
	b, err := json.Marshal(loc)
	if err != nil {
		w.Header().Set("Hx-Location", loc.Path)
		return
	}
	w.Header().Set("Hx-Location", string(b))
}

// SetHXTrigger triggers a client-side event after swap with optional payload.
// It sets the Hx-Trigger response header as a JSON object: {"<event>": <payload>}.
// If payload is nil, the value true is used for the event.
func SetHXTrigger(w http.ResponseWriter, event string, payload any) {
	var value any = true
	if payload != nil {
		value = payload
	}
	b, err := json.Marshal(map[string]any{event: value})
	if err != nil {
		w.Header().Set("Hx-Trigger", "{\""+event+"\":true}")
		return
	}
	w.Header().Set("Hx-Trigger", string(b))
}

// HTMXResponse provides a fluent API for building htmx responses.
type HTMXResponse struct {
	w http.ResponseWriter
}

// HTMX creates a new HTMXResponse for fluent response building.
func HTMX(w http.ResponseWriter) *HTMXResponse {
	return &HTMXResponse{w: w}
}

// Trigger sets an Hx-Trigger event. Chainable.
func (h *HTMXResponse) Trigger(event string, payload any) *HTMXResponse {
	SetHXTrigger(h.w, event, payload)
	return h
}

// PushURL pushes url into the browser history. Chainable.
func (h *HTMXResponse) PushURL(url string) *HTMXResponse {
	SetHXPushURL(h.w, url)
	return h
}

// NoContent finishes the response with 204. Handlers must return right after.
func (h *HTMXResponse) NoContent() {
	h.w.WriteHeader(http.StatusNoContent)
}

// Redirect sets Hx-Redirect and finishes with 204.
func (h *HTMXResponse) Redirect(url string) {
	SetHXRedirect(h.w, url)
	h.w.WriteHeader(http.StatusNoContent)
}

// Location sets Hx-Location and finishes with 200 and an empty body.
func (h *HTMXResponse) Location(loc HXLocation) {
	SetHXLocation(h.w, loc)
	h.w.WriteHeader(http.StatusOK)
}
