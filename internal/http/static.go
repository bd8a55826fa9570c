package httpx

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/http"
	"strings"
	"sync"
)

// assetVersioner appends a short content hash to static URLs so they can be cached forever.
// In dev mode hashes are recomputed on each lookup so edits show up immediately.
type assetVersioner struct {
	fsys  fs.FS
	dev   bool
	cache sync.Map // logical name -> versioned URL
}

func newAssetVersioner(fsys fs.FS, dev bool) *assetVersioner {
	return &assetVersioner{fsys: fsys, dev: dev}
}

// URL returns the public URL for a logical asset name such as "css/app.css".
func (v *assetVersioner) URL(name string) string {
	name = strings.TrimPrefix(name, "/")
	if !v.dev {
		if cached, ok := v.cache.Load(name); ok {
			return cached.(string)
		}
	}

	url := "/static/" + name
	if v.fsys != nil {
		if b, err := fs.ReadFile(v.fsys, name); err == nil {
			sum := sha256.Sum256(b)
			url += "?v=" + hex.EncodeToString(sum[:4])
		}
	}
	if !v.dev {
		v.cache.Store(name, url)
	}
	return url
}

// staticHandler serves /static/* from fsys with cache headers.
func staticHandler(fsys fs.FS) http.Handler {
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(fsys))))
}

// staticWithCacheHeaders lets versioned asset URLs be cached for a year and forces
// revalidation for everything else.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}
