package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/focal-api/internal/api/middleware"
	"github.com/phrazzld/focal-api/internal/service/auth"
)

type stubSessionService struct {
	validateErr error
}

func (s *stubSessionService) Login(_ context.Context, _ string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubSessionService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return &auth.Claims{}, nil
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		header      string
		validateErr error
		wantStatus  int
	}{
		{
			name:       "valid token passes through",
			header:     "Bearer good-token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing token part",
			header:     "Bearer",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "expired token",
			header:      "Bearer stale",
			validateErr: auth.ErrExpiredToken,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "invalid token",
			header:      "Bearer garbage",
			validateErr: auth.ErrInvalidToken,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "unexpected validation failure",
			header:      "Bearer token",
			validateErr: errors.New("keystore unavailable"),
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := middleware.NewAuthMiddleware(&stubSessionService{validateErr: tc.validateErr})

			nextCalled := false
			handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantStatus == http.StatusOK, nextCalled)
		})
	}
}
