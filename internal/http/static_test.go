package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestAssetVersioner(t *testing.T) {
	fsys := fstest.MapFS{"css/app.css": {Data: []byte("body{}")}}

	v := newAssetVersioner(fsys, false)
	first := v.URL("css/app.css")
	assert.Regexp(t, `^/static/css/app\.css\?v=[0-9a-f]{8}$`, first)
	assert.Equal(t, first, v.URL("/css/app.css"))

	// Production caches the first answer.
	fsys["css/app.css"] = &fstest.MapFile{Data: []byte("body{color:red}")}
	assert.Equal(t, first, v.URL("css/app.css"))

	// Dev mode picks up edits.
	dev := newAssetVersioner(fsys, true)
	assert.NotEqual(t, first, dev.URL("css/app.css"))

	assert.Equal(t, "/static/missing.js", v.URL("missing.js"))
}

func TestStaticHandler(t *testing.T) {
	h := staticHandler(fstest.MapFS{"js/app.js": {Data: []byte("console.log(1)")}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/app.js?v=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/other.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/app.js", nil))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}
