package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geohazard/service/internal/middleware"
)

func guarded() http.Handler {
	return middleware.RequireAuth("s3cret")(middleware.RequireRole(middleware.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(middleware.Subject(r.Context())))
		}),
	))
}

func call(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded().ServeHTTP(rec, req)
	return rec
}

func TestIssuedTokenPassesMiddleware(t *testing.T) {
	token, err := NewIssuer("s3cret", time.Hour).Issue("ops@site", middleware.RoleAdmin)
	require.NoError(t, err)

	rec := call(t, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@site", rec.Body.String())
}

func TestIssuedTokenExpires(t *testing.T) {
	iss := NewIssuer("s3cret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := iss.Issue("ops@site", middleware.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(t, token).Code)
}

func TestIssueNonAdminForbidden(t *testing.T) {
	token, err := NewIssuer("s3cret", 0).Issue("viewer@site", "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(t, token).Code)
}

func TestIssueValidation(t *testing.T) {
	_, err := NewIssuer("", time.Hour).Issue("ops", middleware.RoleAdmin)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewIssuer("s3cret", time.Hour).Issue("", middleware.RoleAdmin)
	assert.Error(t, err)
}
