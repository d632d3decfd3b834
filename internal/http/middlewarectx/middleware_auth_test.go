package middlewarectx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geobee/geobee/internal/http/middlewarectx"
	"github.com/geobee/geobee/internal/lib/jwt"
	"github.com/geobee/geobee/internal/lib/sl"
)

// Мок для TokenParser
type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) ParseToken(token string) (*jwt.CustomClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

func TestJWTMiddleware(t *testing.T) {
	parser := new(TokenParserMock)
	handlerCalled := false

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		id, ok := middlewarectx.UserIDFrom(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "user-1", id)
		assert.Equal(t, "ann@example.com", r.Context().Value(middlewarectx.Email))
		assert.Equal(t, "user", r.Context().Value(middlewarectx.Role))
		w.WriteHeader(http.StatusOK)
	})

	handler := middlewarectx.JWTMiddleware(parser, sl.Discard())(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		parseToken     string
		mockClaims     *jwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantError      string
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Missing or invalid Authorization header",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Missing or invalid Authorization header",
		},
		{
			name:           "scheme without token",
			authHeader:     "Bearer ",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Missing or invalid Authorization header",
		},
		{
			name:           "lowercase scheme",
			authHeader:     "bearer token",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Missing or invalid Authorization header",
		},
		{
			name:           "token rejected",
			authHeader:     "Bearer expired",
			parseToken:     "expired",
			mockErr:        jwt.ErrInvalidToken,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid or expired token",
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			parseToken:     "validtoken",
			mockClaims:     &jwt.CustomClaims{ID: "user-1", Email: "ann@example.com", Role: "user"},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			parser.ExpectedCalls = nil
			parser.Calls = nil
			if tt.parseToken != "" {
				parser.On("ParseToken", tt.parseToken).Return(tt.mockClaims, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			if tt.wantError != "" {
				var got map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.wantError, got["error"])
			}
			parser.AssertExpectations(t)
		})
	}
}

func TestUserIDFrom(t *testing.T) {
	_, ok := middlewarectx.UserIDFrom(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), middlewarectx.UserID, "")
	_, ok = middlewarectx.UserIDFrom(ctx)
	assert.False(t, ok)

	ctx = context.WithValue(context.Background(), middlewarectx.UserID, "u1")
	id, ok := middlewarectx.UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestRateLimitMiddleware(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.RateLimitMiddleware(sl.Discard(), 0.001, 2)(next)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 2, calls)
}

func TestSecureHeaders(t *testing.T) {
	handler := middlewarectx.SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestDocsHeaders_OverridesPolicy(t *testing.T) {
	handler := middlewarectx.SecureHeaders(middlewarectx.DocsHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))

	assert.Equal(t, middlewarectx.DocsCSP, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRecoverer(t *testing.T) {
	handler := middlewarectx.Recoverer(sl.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestLogger(t *testing.T) {
	handler := middlewarectx.Logger(sl.Discard())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
