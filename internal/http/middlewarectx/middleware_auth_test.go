package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fintrack/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fintrack/internal/lib/jwt"
)

// Mock for the token validator
type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		mockClaims     *jwt.CustomClaims
		mockErr        error
		callService    bool
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token is expired"),
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockClaims:     &jwt.CustomClaims{UserID: "u-1", Email: "a@x.com"},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			if tt.callService {
				svc.On("ValidateToken", mock.Anything, mock.Anything).Return(tt.mockClaims, tt.mockErr).Once()
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				assert.Equal(t, "u-1", r.Context().Value(middlewarectx.UserID))
				assert.Equal(t, "a@x.com", r.Context().Value(middlewarectx.Email))
				w.WriteHeader(http.StatusOK)
			})
			h := middlewarectx.JWTMiddleware(svc, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			svc.AssertExpectations(t)
		})
	}
}

func TestJWTMiddleware_RealToken(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("a@x.com", "u-1")
	assert.NoError(t, err)

	validator := tokenParser{maker: maker}
	var gotID any
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Context().Value(middlewarectx.UserID)
	})
	h := middlewarectx.JWTMiddleware(validator, newNoopLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", gotID)
}

type tokenParser struct {
	maker jwt.Maker
}

func (p tokenParser) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return p.maker.ParseToken(token)
}
