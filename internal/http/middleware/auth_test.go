package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := actorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoActor(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(actor.ID + ":" + string(actor.Role)))
	})
}

func TestActorAuthValidToken(t *testing.T) {
	handler := ActorAuth(testSecret)(echoActor(t))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, "cust-1", "customer", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cust-1:customer", rec.Body.String())
}

func TestActorAuthRejections(t *testing.T) {
	handler := ActorAuth(testSecret)(echoActor(t))

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"wrong secret", mintToken(t, "other-secret", "cust-1", "customer", time.Hour)},
		{"expired", mintToken(t, testSecret, "cust-1", "customer", -time.Minute)},
		{"no subject", mintToken(t, testSecret, "", "customer", time.Hour)},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestActorAuthDisabledWithoutSecret(t *testing.T) {
	handler := ActorAuth("")(echoActor(t))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, "cust-1", "customer", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole(RolePractitioner, RoleAdmin)(next)

	tests := []struct {
		role Role
		want int
	}{
		{RolePractitioner, http.StatusNoContent},
		{RoleAdmin, http.StatusNoContent},
		{RoleCustomer, http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req = req.WithContext(WithActor(req.Context(), Actor{ID: "a-1", Role: tt.role}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, tt.want, rec.Code, "role %s", tt.role)
	}
}

func TestRequireRoleWithoutActor(t *testing.T) {
	handler := RequireRole(RoleAdmin)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
