package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expires, err := tm.GenerateToken("user-1", domain.UserRoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expires, time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, domain.UserRoleAdmin, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredAndForeignAlgorithms(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseToken(unsigned)
	assert.Error(t, err)
}

func newAuthApp(t *testing.T) (*fiber.App, *TokenManager, map[string]domain.User) {
	t.Helper()
	store := repository.NewMemoryStore()
	users := store.Repos().Users
	ctx := context.Background()

	fixtures := map[string]domain.User{
		"admin":      {Email: "admin@example.com", Role: domain.UserRoleAdmin, Status: domain.UserStatusActive, Verified: true},
		"member":     {Email: "member@example.com", Role: domain.UserRoleUser, Status: domain.UserStatusActive, Verified: true},
		"unverified": {Email: "new@example.com", Role: domain.UserRoleAdmin, Status: domain.UserStatusActive},
		"suspended":  {Email: "gone@example.com", Role: domain.UserRoleUser, Status: domain.UserStatusSuspended, Verified: true},
	}
	for name, u := range fixtures {
		require.NoError(t, users.Create(ctx, &u))
		fixtures[name] = u
	}

	tm := NewTokenManager("secret", 5)
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return c.SendStatus(fe.Code)
		}
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	mw := NewAuthMiddleware(tm, users)
	ok := func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.ID())
	}
	app.Get("/me", mw.Handle, RequireAnyRole(), ok)
	app.Get("/admin", mw.Handle, RequireAdmin(), ok)
	return app, tm, fixtures
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, users := newAuthApp(t)

	bearer := func(name string) string {
		token, _, err := tm.GenerateToken(users[name].ID, users[name].Role)
		require.NoError(t, err)
		return "Bearer " + token
	}
	ghost, _, err := tm.GenerateToken("ghost", domain.UserRoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"malformed header", "/me", "Token abc", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer abc", http.StatusUnauthorized},
		{"unknown user", "/me", "Bearer " + ghost, http.StatusUnauthorized},
		{"member", "/me", bearer("member"), http.StatusOK},
		{"unverified", "/me", bearer("unverified"), http.StatusUnauthorized},
		{"suspended", "/me", bearer("suspended"), http.StatusUnauthorized},
		{"member on admin route", "/admin", bearer("member"), http.StatusForbidden},
		{"admin on admin route", "/admin", bearer("admin"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
