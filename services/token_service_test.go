package services

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
)

const testSecret = "test-secret-key-at-least-32-chars-long!!"

func newTestTokenService() *TokenService {
	return NewTokenService(testSecret, "15m", "7d", "localhost", false)
}

func testPayload() TokenPayload {
	return TokenPayload{
		UserID:       "user-1",
		Username:     "alice",
		Role:         models.RoleUser,
		SessionToken: "session-abc",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.GenerateAccessToken(testPayload())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "session-abc", claims.SessionToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.GenerateRefreshToken(testPayload())
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.GenerateAccessToken(testPayload())
	require.NoError(t, err)

	// Son karakteri değiştir — imza artık tutmaz.
	tampered := token[:len(token)-1] + "X"
	if tampered == token {
		tampered = token[:len(token)-1] + "Y"
	}

	_, err = svc.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService("another-secret-key-also-32-chars-long!!!", "15m", "7d", "localhost", false)

	token, err := other.GenerateAccessToken(testPayload())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// "0s" expiry → token üretildiği anda süresi dolmuştur.
	svc := NewTokenService(testSecret, "0s", "7d", "localhost", false)

	token, err := svc.GenerateAccessToken(testPayload())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	svc := newTestTokenService()

	for _, garbage := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.VerifyAccessToken(garbage)
		assert.ErrorIs(t, err, pkg.ErrUnauthorized, "input: %q", garbage)
	}
}

func TestGenerateSessionToken(t *testing.T) {
	svc := newTestTokenService()

	first, err := svc.GenerateSessionToken()
	require.NoError(t, err)
	second, err := svc.GenerateSessionToken()
	require.NoError(t, err)

	// 32 byte → 64 hex karakter; iki üretim asla aynı olmamalı.
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

func TestGenerateResetToken(t *testing.T) {
	svc := newTestTokenService()

	token, hashed, err := svc.GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Len(t, hashed, 64) // SHA256 hex
	assert.NotEqual(t, token, hashed)

	// Hash deterministik: redemption'da aynı sonuç hesaplanabilmeli.
	assert.Equal(t, hashed, svc.HashToken(token))
	assert.Equal(t, svc.HashToken(token), svc.HashToken(token))
	assert.NotEqual(t, hashed, svc.HashToken("different"))
}

func TestParseExpirySeconds(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"30s", 30},
		{"15m", 900},
		{"2h", 7200},
		{"7d", 604800},
		{"1d", 86400},
		{"", 900},        // boş → fallback
		{"garbage", 900}, // parse edilemeyen → fallback
		{"15", 900},      // birimsiz → fallback
		{"m15", 900},
		{"10w", 900}, // desteklenmeyen birim → fallback
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpirySeconds(tt.input))
		})
	}
}

func TestCookieAttributes(t *testing.T) {
	svc := NewTokenService(testSecret, "15m", "7d", "typerone.app", true)

	c := svc.AccessTokenCookie("token-value")
	assert.Equal(t, AccessTokenCookieName, c.Name)
	assert.Equal(t, "token-value", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, "typerone.app", c.Domain)
	assert.Equal(t, 900, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	r := svc.RefreshTokenCookie("refresh-value")
	assert.Equal(t, RefreshTokenCookieName, r.Name)
	assert.Equal(t, 7*24*60*60, r.MaxAge)
}

func TestCookieSecureOnlyInProduction(t *testing.T) {
	dev := NewTokenService(testSecret, "15m", "7d", "localhost", false)
	assert.False(t, dev.AccessTokenCookie("v").Secure)

	prod := NewTokenService(testSecret, "15m", "7d", "typerone.app", true)
	assert.True(t, prod.AccessTokenCookie("v").Secure)
}

func TestClearedCookie(t *testing.T) {
	svc := newTestTokenService()

	c := svc.ClearedCookie(AccessTokenCookieName)
	assert.Equal(t, AccessTokenCookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.True(t, c.HttpOnly)
}

func TestTokenExpiryFromConfig(t *testing.T) {
	svc := NewTokenService(testSecret, "1h", "30d", "localhost", false)

	token, err := svc.GenerateAccessToken(testPayload())
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)
}

func TestTokensAreThreePartJWTs(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.GenerateAccessToken(testPayload())
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
}
