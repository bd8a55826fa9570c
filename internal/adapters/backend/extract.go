package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
)

var (
	messageExpr = jmespath.MustCompile("message || error.message || error_description")
	userRoot    = jmespath.MustCompile("user || data.user || data || @")
	userFields  = jmespath.MustCompile(
		"{id: id || _id || userId, name: name || fullName, email: email, role: role, createdAt: createdAt}")
)

// ExtractMessage derives a human-readable message from a response body.
// It tries a structured message field, then a plain string body, then the raw
// text of any other JSON scalar or array. Objects without a message, null and
// empty bodies yield "" so that callers can substitute their own default.
func ExtractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return string(trimmed)
	}

	switch v := doc.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		res, err := messageExpr.Search(v)
		if err != nil {
			return ""
		}
		if s, ok := res.(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	default:
		return string(trimmed)
	}
}

// decodeUser normalises the many user shapes the backend returns.
func decodeUser(body []byte) (domainauth.User, bool) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return domainauth.User{}, false
	}
	if _, ok := doc.(map[string]any); !ok {
		return domainauth.User{}, false
	}

	root, err := userRoot.Search(doc)
	if err != nil {
		return domainauth.User{}, false
	}
	if _, ok := root.(map[string]any); !ok {
		root = doc
	}

	res, err := userFields.Search(root)
	if err != nil {
		return domainauth.User{}, false
	}
	fields, ok := res.(map[string]any)
	if !ok {
		return domainauth.User{}, false
	}

	u := domainauth.User{
		ID:    scalarString(fields["id"]),
		Name:  scalarString(fields["name"]),
		Email: scalarString(fields["email"]),
		Role:  scalarString(fields["role"]),
	}
	u.CreatedAt = parseCreatedAt(fields["createdAt"])
	return u, true
}

// createdAtLayouts are tried in order. Zone-less values are read as UTC.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseCreatedAt accepts an ISO-style timestamp or epoch milliseconds.
// Anything else yields the zero time.
func parseCreatedAt(v any) time.Time {
	if ms, ok := v.(float64); ok {
		return time.UnixMilli(int64(ms)).UTC()
	}
	raw := scalarString(v)
	if raw == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
