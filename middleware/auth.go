// Package middleware, HTTP istekleri handler'a ulaşmadan önce çalışan
// ara katmanları barındırır.
//
// Middleware nedir?
// http.Handler alıp http.Handler dönen bir fonksiyondur; istek handler'a
// ulaşmadan araya girer. Auth middleware'i korumalı her route'un önünde
// durur — handler'lar kimlik kontrolüyle uğraşmaz.
package middleware

import (
	"context"
	"net/http"

	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
	"github.com/typerone/server/repository"
	"github.com/typerone/server/services"
)

// contextKey, context value çakışmalarını önleyen özel tip.
// String kullansaydık başka bir paket aynı anahtarı ezebilirdi.
type contextKey string

const claimsKey contextKey = "authClaims"

// Auth, korumalı route'lar için kimlik doğrulama middleware'i.
//
// Sıra önemli:
//  1. accessToken cookie'si var mı?
//  2. Token imzası ve süresi geçerli mi?
//  3. Kullanıcı hala var mı, token'daki sessionToken DB'deki güncel
//     değerle eşleşiyor mu? (logout / başka cihazdan login kontrolü)
//  4. Hesap aktif mi?
//
// Her adımın başarısızlığı 401'dir — handler'a hiç ulaşılmaz.
type Auth struct {
	tokens *services.TokenService
	users  repository.UserRepository
}

// NewAuth, constructor.
func NewAuth(tokens *services.TokenService, users repository.UserRepository) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// Require, verilen handler'ı kimlik doğrulama zorunluluğuyla sarar.
func (m *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(services.AccessTokenCookieName)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := m.tokens.VerifyAccessToken(cookie.Value)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			// Kullanıcı silinmişse de "geçersiz oturum" davranışı gösterilir.
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Kriptografik olarak geçerli bir token bile, içindeki sessionToken
		// DB'deki güncel değerden farklıysa ölüdür. Logout ve "başka
		// cihazdan giriş" eski token'ları işte bu satırda öldürür.
		if user.SessionToken == nil || *user.SessionToken != claims.SessionToken {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Session expired or logged in from another device")
			return
		}

		if !user.IsActive {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Account is inactive")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFunc, http.HandlerFunc alan kısayol.
func (m *Auth) RequireFunc(next http.HandlerFunc) http.Handler {
	return m.Require(next)
}

// ClaimsFromContext, middleware'in context'e koyduğu claims'i döner.
// Sadece Auth.Require ile sarılmış handler'larda ok=true olur.
func ClaimsFromContext(ctx context.Context) (*models.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*models.TokenClaims)
	return claims, ok
}
