package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
	"github.com/typerone/server/services"
)

const testSecret = "test-secret-key-at-least-32-chars-long!!"

// stubUserRepo, tek kullanıcılık minimal UserRepository.
type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) Create(context.Context, *models.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, pkg.ErrNotFound
	}
	clone := *r.user
	return &clone, nil
}

func (r *stubUserRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, pkg.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, pkg.ErrNotFound
}

func (r *stubUserRepo) UpdatePassword(context.Context, string, string) error { return nil }

func (r *stubUserRepo) UpdateSessionToken(context.Context, string, *string) error { return nil }

func (r *stubUserRepo) UpdateLastLogin(context.Context, string) error { return nil }

type guardFixture struct {
	tokens *services.TokenService
	repo   *stubUserRepo
	auth   *Auth
}

func newGuardFixture() *guardFixture {
	tokens := services.NewTokenService(testSecret, "15m", "7d", "localhost", false)
	session := "session-abc"
	repo := &stubUserRepo{
		user: &models.User{
			ID:           "user-1",
			Username:     "alice",
			Role:         models.RoleUser,
			SessionToken: &session,
			IsActive:     true,
		},
	}
	return &guardFixture{
		tokens: tokens,
		repo:   repo,
		auth:   NewAuth(tokens, repo),
	}
}

func (f *guardFixture) accessToken(t *testing.T, sessionToken string) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(services.TokenPayload{
		UserID:       "user-1",
		Username:     "alice",
		Role:         models.RoleUser,
		SessionToken: sessionToken,
	})
	require.NoError(t, err)
	return token
}

// do, guard'ın arkasına konan probe handler ile isteği çalıştırır.
// Probe'a ulaşılırsa context'teki claims dışarı alınır.
func (f *guardFixture) do(req *http.Request) (*httptest.ResponseRecorder, *models.TokenClaims) {
	var captured *models.TokenClaims
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	f.auth.Require(probe).ServeHTTP(rec, req)
	return rec, captured
}

func TestGuardMissingCookie(t *testing.T) {
	f := newGuardFixture()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec, claims := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, claims)
}

func TestGuardInvalidToken(t *testing.T) {
	f := newGuardFixture()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: services.AccessTokenCookieName, Value: "garbage"})
	rec, _ := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardSessionMismatch(t *testing.T) {
	f := newGuardFixture()

	// Token geçerli ama içindeki sessionToken DB'dekiyle eşleşmiyor —
	// "başka cihazdan login" senaryosu.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.AccessTokenCookieName,
		Value: f.accessToken(t, "stale-session"),
	})
	rec, _ := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "another device")
}

func TestGuardLoggedOutUser(t *testing.T) {
	f := newGuardFixture()
	f.repo.user.SessionToken = nil // logout sonrası durum

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.AccessTokenCookieName,
		Value: f.accessToken(t, "session-abc"),
	})
	rec, _ := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardInactiveAccount(t *testing.T) {
	f := newGuardFixture()
	f.repo.user.IsActive = false

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.AccessTokenCookieName,
		Value: f.accessToken(t, "session-abc"),
	})
	rec, _ := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive")
}

func TestGuardDeletedUser(t *testing.T) {
	f := newGuardFixture()
	token := f.accessToken(t, "session-abc")
	f.repo.user = nil

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: services.AccessTokenCookieName, Value: token})
	rec, _ := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardSuccessAttachesClaims(t *testing.T) {
	f := newGuardFixture()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.AccessTokenCookieName,
		Value: f.accessToken(t, "session-abc"),
	})
	rec, claims := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestClaimsFromContextWithoutGuard(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
