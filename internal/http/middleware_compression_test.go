package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gzipCase struct {
	contentType    string
	status         int
	acceptEncoding string
	method         string
	body           string
}

func serveGzip(t *testing.T, tc gzipCase) *http.Response {
	t.Helper()
	if tc.method == "" {
		tc.method = http.MethodGet
	}
	if tc.status == 0 {
		tc.status = http.StatusOK
	}
	h := Compression(CompressionConfig{Level: 6})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if tc.contentType != "" {
			w.Header().Set("Content-Type", tc.contentType)
		}
		w.WriteHeader(tc.status)
		if tc.body != "" {
			_, _ = io.WriteString(w, tc.body)
		}
	}))
	req := httptest.NewRequest(tc.method, "/", nil)
	if tc.acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", tc.acceptEncoding)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func TestCompression_RoundTrip(t *testing.T) {
	page := strings.Repeat("<p>PayAssure</p>", 500)
	res := serveGzip(t, gzipCase{contentType: "text/html; charset=utf-8", acceptEncoding: "gzip, deflate", body: page})

	assert.Equal(t, "gzip", res.Header.Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", res.Header.Get("Vary"))
	assert.Empty(t, res.Header.Get("Content-Length"))

	gr, err := gzip.NewReader(res.Body)
	require.NoError(t, err)
	defer gr.Close()
	got, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, page, string(got))
}

func TestCompression_Skips(t *testing.T) {
	tests := []struct {
		name string
		tc   gzipCase
	}{
		{"no accept-encoding", gzipCase{contentType: "text/html", body: "x"}},
		{"deflate only", gzipCase{contentType: "text/html", acceptEncoding: "deflate", body: "x"}},
		{"gzip disabled by q=0", gzipCase{contentType: "text/html", acceptEncoding: "gzip;q=0", body: "x"}},
		{"head request", gzipCase{contentType: "text/html", acceptEncoding: "gzip", method: http.MethodHead}},
		{"no content", gzipCase{acceptEncoding: "gzip", status: http.StatusNoContent}},
		{"not modified", gzipCase{acceptEncoding: "gzip", status: http.StatusNotModified}},
		{"binary asset", gzipCase{contentType: "image/png", acceptEncoding: "gzip", body: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := serveGzip(t, tt.tc)
			assert.NotEqual(t, "gzip", res.Header.Get("Content-Encoding"))
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.tc.body, string(body))
		})
	}
}

func TestCompression_CompressesTextTypes(t *testing.T) {
	for _, ct := range []string{"text/html", "text/css", "application/json", "application/javascript", "image/svg+xml"} {
		t.Run(ct, func(t *testing.T) {
			res := serveGzip(t, gzipCase{contentType: ct, acceptEncoding: "deflate, gzip;q=0.5", body: "content"})
			assert.Equal(t, "gzip", res.Header.Get("Content-Encoding"))
		})
	}
}

func TestCompression_ErrorPagesAreCompressed(t *testing.T) {
	res := serveGzip(t, gzipCase{contentType: "text/html", acceptEncoding: "gzip", status: http.StatusNotFound, body: "missing"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "gzip", res.Header.Get("Content-Encoding"))
}

func TestCompression_KeepsExistingEncoding(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "br")
		_, _ = io.WriteString(w, "already encoded")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "already encoded", rec.Body.String())
}
