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

func mint(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func protected() http.Handler {
	return RequireAuth(testSecret)(RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Subject(r.Context())))
	})))
}

func TestRequireAuthAdmin(t *testing.T) {
	token := mint(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":  "engineer@site",
		"role": RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "engineer@site", rec.Body.String())
}

func TestRequireAuthRejections(t *testing.T) {
	valid := jwt.MapClaims{"sub": "x", "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()}
	tests := map[string]struct {
		header string
		status int
	}{
		"missing header": {"", http.StatusUnauthorized},
		"wrong scheme":   {"Basic abc", http.StatusUnauthorized},
		"garbage token":  {"Bearer not.a.token", http.StatusUnauthorized},
		"wrong secret": {
			"Bearer " + mint(t, jwt.SigningMethodHS256, []byte("other"), valid),
			http.StatusUnauthorized,
		},
		"expired": {
			"Bearer " + mint(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"sub": "x", "role": RoleAdmin, "exp": time.Now().Add(-time.Minute).Unix(),
			}),
			http.StatusUnauthorized,
		},
		"not admin": {
			"Bearer " + mint(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"sub": "x", "role": "viewer", "exp": time.Now().Add(time.Hour).Unix(),
			}),
			http.StatusForbidden,
		},
		"no role": {
			"Bearer " + mint(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "x"}),
			http.StatusForbidden,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}
