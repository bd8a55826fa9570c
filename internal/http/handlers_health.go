package httpx

import (
	"io"
	"net/http"
)

const healthResponse = `{"status":"ok","service":"payassure-web"}` + "\n"

// healthHandler reports liveness. It does not probe the backend or the session store.
// GET /healthz; the GET pattern also answers HEAD.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
