package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewSessionIssuer("test-secret", false)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestSessionIssuer_VerifyRejects(t *testing.T) {
	issuer := NewSessionIssuer("test-secret", false)

	expired := NewSessionIssuer("test-secret", false)
	expired.ttl = -time.Minute
	expiredToken, err := expired.Issue("admin")
	require.NoError(t, err)

	otherToken, err := NewSessionIssuer("other-secret", false).Issue("admin")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"wrong secret", otherToken},
		{"unsigned", noneToken},
		{"malformed", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestSessionIssuer_Cookies(t *testing.T) {
	issuer := NewSessionIssuer("test-secret", true)

	cookie, err := issuer.Cookie("admin")
	require.NoError(t, err)
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 24*60*60, cookie.MaxAge)

	expired := issuer.ExpiredCookie()
	assert.Equal(t, CookieName, expired.Name)
	assert.Empty(t, expired.Value)
	assert.Contains(t, expired.String(), "Max-Age=0")
}

func TestRequireSession(t *testing.T) {
	issuer := NewSessionIssuer("test-secret", false)
	valid, err := issuer.Issue("admin")
	require.NoError(t, err)

	tests := []struct {
		name           string
		cookieValue    string
		expectedStatus int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"invalid cookie", "invalid", http.StatusUnauthorized},
		{"valid cookie", valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/auth/change-password", nil)
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookieValue})
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequireSession(issuer)(func(c echo.Context) error {
				claims, ok := ClaimsFrom(c)
				require.True(t, ok)
				assert.Equal(t, "admin", claims.Username)
				return c.NoContent(http.StatusOK)
			})

			err := h(c)
			if tt.expectedStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.expectedStatus, httpErr.Code)
		})
	}
}
