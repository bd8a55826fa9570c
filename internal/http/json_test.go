package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/payassure/payassure-web/internal/adapters/backend"
	apperrors "github.com/payassure/payassure-web/internal/errors"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"backend 401", &backend.Error{Op: backend.OpLogin, Status: 401}, http.StatusUnauthorized},
		{"backend 429 wrapped", fmt.Errorf("login: %w", &backend.Error{Status: 429}), http.StatusTooManyRequests},
		{"backend 500", &backend.Error{Status: 500}, http.StatusBadGateway},
		{"backend transport", &backend.Error{Cause: errors.New("refused")}, http.StatusBadGateway},
		{"backend deadline", &backend.Error{Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"validation", apperrors.ValidationField("email", "required"), http.StatusUnprocessableEntity},
		{"not found", apperrors.NotFound("no"), http.StatusNotFound},
		{"unauthorized", apperrors.Unauthorized("expired"), http.StatusUnauthorized},
		{"unavailable", apperrors.Unavailable("redis down"), http.StatusServiceUnavailable},
		{"context deadline", fmt.Errorf("save: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrorParams{Code: http.StatusTeapot, ErrCode: "teapot", Err: errors.New("short and stout")})

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"teapot","message":"short and stout"}`, rec.Body.String())
}
