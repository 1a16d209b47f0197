// Package handlers, HTTP request'lerini karşılayan handler'ları barındırır.
//
// Handler katmanı sadece HTTP çevirisi yapar: body decode, service çağrısı,
// cookie/status yazımı. İş kuralı İÇERMEZ — kurallar service katmanındadır.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/typerone/server/middleware"
	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
	"github.com/typerone/server/pkg/ratelimit"
	"github.com/typerone/server/services"
)

// forgotPasswordMessage, identifier'ın varlığından BAĞIMSIZ dönen generic
// mesaj — response'tan hesap varlığı çıkarılamaz.
const forgotPasswordMessage = "If an account exists with that username or email, a password reset link has been sent."

// AuthHandler, kimlik doğrulama endpoint'lerini yönetir.
type AuthHandler struct {
	auth         services.AuthService
	tokens       *services.TokenService
	loginLimiter *ratelimit.Limiter
	resetLimiter *ratelimit.Limiter
}

// NewAuthHandler, constructor.
// loginLimiter brute-force'u, resetLimiter forgot-password spam'ini keser —
// sayaçlar ayrıdır, login denemeleri reset hakkını tüketmez.
func NewAuthHandler(
	auth services.AuthService,
	tokens *services.TokenService,
	loginLimiter *ratelimit.Limiter,
	resetLimiter *ratelimit.Limiter,
) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		tokens:       tokens,
		loginLimiter: loginLimiter,
		resetLimiter: resetLimiter,
	}
}

// Register, POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	h.setAuthCookies(w, result)
	pkg.JSON(w, http.StatusCreated, map[string]any{
		"user": result.User.Public(),
	})
}

// Login, POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if !h.loginLimiter.Allow(ip) {
		tooManyRequests(w, h.loginLimiter, ip, "Too many login attempts, please try again later")
		return
	}

	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Meşru kullanıcı içeri girdi — sayacı temizle, yazım hatalarından
	// birikmiş denemeler sonraki login'i engellemesin.
	h.loginLimiter.Reset(ip)

	h.setAuthCookies(w, result)
	pkg.JSON(w, http.StatusOK, map[string]any{
		"user": result.User.Public(),
	})
}

// Refresh, POST /api/auth/refresh.
// Sadece refresh cookie ister; access token süresi dolmuş olabilir.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(services.RefreshTokenCookieName)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	accessToken, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	http.SetCookie(w, h.tokens.AccessTokenCookie(accessToken))
	pkg.Message(w, http.StatusOK, "Token refreshed")
}

// Logout, POST /api/auth/logout. Guard arkasındadır.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.auth.Logout(r.Context(), claims.UserID); err != nil {
		pkg.Error(w, err)
		return
	}

	http.SetCookie(w, h.tokens.ClearedCookie(services.AccessTokenCookieName))
	http.SetCookie(w, h.tokens.ClearedCookie(services.RefreshTokenCookieName))
	pkg.Message(w, http.StatusOK, "Logged out successfully")
}

// Me, GET /api/auth/me. Guard arkasındadır.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.auth.GetUser(r.Context(), claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"user": user.Public(),
	})
}

// ForgotPassword, POST /api/auth/forgot-password.
// Identifier geçerliyse her zaman aynı generic mesajı döner — 200'den
// hesabın var olup olmadığı çıkarılamaz.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if !h.resetLimiter.Allow(ip) {
		tooManyRequests(w, h.resetLimiter, ip, "Too many password reset requests, please try again later")
		return
	}

	var req models.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.Message(w, http.StatusOK, forgotPasswordMessage)
}

// ResetPassword, POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.Message(w, http.StatusOK, "Password has been reset successfully")
}

// setAuthCookies, access + refresh token cookie çiftini yazar.
// Token'lar response body'ye ASLA yazılmaz — HttpOnly cookie tek taşıyıcı.
func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, result *services.AuthResult) {
	http.SetCookie(w, h.tokens.AccessTokenCookie(result.AccessToken))
	http.SetCookie(w, h.tokens.RefreshTokenCookie(result.RefreshToken))
}

// decodeJSON, request body'yi hedefe decode eder. Başarısızsa 400 yazar ve
// false döner — çağıran sadece return eder.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// tooManyRequests, 429 + Retry-After yazar.
func tooManyRequests(w http.ResponseWriter, limiter *ratelimit.Limiter, ip, message string) {
	w.Header().Set("Retry-After", fmt.Sprintf("%d", limiter.RetryAfterSeconds(ip)))
	pkg.ErrorWithMessage(w, http.StatusTooManyRequests, message)
}
