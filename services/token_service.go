// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern: Handler (HTTP) ile Repository (DB) arasında oturan
// katmandır. Tüm iş kuralları burada yaşar — şifre hash'leme, token üretimi,
// reset akışı. Service ASLA http.Request/Response bilmez, ASLA doğrudan SQL
// çalıştırmaz.
package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
)

// Cookie isimleri — client ile paylaşılan sözleşme.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// TokenPayload, token'a gömülecek kullanıcı bilgisi.
// SessionToken buradaki en kritik alan: doğrulama sırasında User kaydındaki
// güncel session token ile karşılaştırılır (bkz. middleware.Auth).
type TokenPayload struct {
	UserID       string
	Username     string
	Role         models.Role
	SessionToken string
}

// TokenService, tüm kriptografik token üretim/doğrulama işlemlerini ve
// cookie policy türetimini yapar.
//
// Access token kısa ömürlü (dakikalar) — API çağrılarını yetkilendirir.
// Refresh token uzun ömürlü (günler) — sadece yeni access token üretir.
// İkisi de aynı secret ile imzalanır ve server tarafında SAKLANMAZ;
// geçerlilik kriptografik doğrulama + session token cross-check'idir.
type TokenService struct {
	secret        []byte
	accessExpiry  string // duration string, ör: "15m"
	refreshExpiry string // duration string, ör: "7d"
	cookieDomain  string
	secureCookies bool // production'da true → Secure attribute
}

// NewTokenService, constructor.
func NewTokenService(secret, accessExpiry, refreshExpiry, cookieDomain string, secureCookies bool) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		cookieDomain:  cookieDomain,
		secureCookies: secureCookies,
	}
}

// GenerateAccessToken, kısa ömürlü access token üretir.
func (s *TokenService) GenerateAccessToken(p TokenPayload) (string, error) {
	return s.generate(p, s.AccessExpirySeconds())
}

// GenerateRefreshToken, uzun ömürlü refresh token üretir.
func (s *TokenService) GenerateRefreshToken(p TokenPayload) (string, error) {
	return s.generate(p, s.RefreshExpirySeconds())
}

func (s *TokenService) generate(p TokenPayload, expirySeconds int) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID:       p.UserID,
		Username:     p.Username,
		Role:         p.Role,
		SessionToken: p.SessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirySeconds) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "typerone",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken, access token'ı doğrular ve claims'i döner.
//
// Herhangi bir hata (bozuk format, yanlış imza, süresi dolmuş) aynı
// ErrUnauthorized'a katlanır — neden ayrıştırılmaz, hata mesajı
// saldırgana oracle olarak kullanılamaz.
func (s *TokenService) VerifyAccessToken(tokenString string) (*models.TokenClaims, error) {
	return s.verify(tokenString)
}

// VerifyRefreshToken, refresh token'ı doğrular ve claims'i döner.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*models.TokenClaims, error) {
	return s.verify(tokenString)
}

func (s *TokenService) verify(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		// alg confusion koruması: sadece HMAC kabul et
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}

	return claims, nil
}

// GenerateSessionToken, kriptografik olarak rastgele, opak session token
// üretir (32 byte entropi, hex encoded → 64 karakter).
// Her başarılı login/register'da YENİSİ üretilir — önceki oturumun tüm
// token'ları o anda geçersizleşir.
func (s *TokenService) GenerateSessionToken() (string, error) {
	return randomHex(32)
}

// GenerateResetToken, şifre sıfırlama token çifti üretir.
//
// token: kullanıcıya email ile giden plaintext secret.
// hashedToken: store anahtarı olarak kullanılan SHA256 hash'i.
// Store sadece hash'i görür — store sızsa bile kullanılabilir secret çıkmaz.
func (s *TokenService) GenerateResetToken() (token, hashedToken string, err error) {
	token, err = randomHex(32)
	if err != nil {
		return "", "", err
	}
	return token, s.HashToken(token), nil
}

// HashToken, plaintext token'ın deterministik SHA256 hash'ini döner.
// Redemption sırasında kullanıcıdan gelen token aynı algoritmayla
// hash'lenip store'da aranır.
func (s *TokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ─── Cookie türetimi ───

// AccessTokenCookie, access token'ı taşıyan cookie'yi döner.
//
// HttpOnly: JavaScript erişemez (XSS'e karşı).
// SameSite=Strict: cross-site isteklerde gönderilmez (CSRF'e karşı).
// Secure: production'da true — sadece HTTPS üzerinden.
func (s *TokenService) AccessTokenCookie(value string) *http.Cookie {
	return s.cookie(AccessTokenCookieName, value, s.AccessExpirySeconds())
}

// RefreshTokenCookie, refresh token'ı taşıyan cookie'yi döner.
func (s *TokenService) RefreshTokenCookie(value string) *http.Cookie {
	return s.cookie(RefreshTokenCookieName, value, s.RefreshExpirySeconds())
}

// ClearedCookie, verilen auth cookie'sini silen (MaxAge<0) cookie döner.
// Logout'ta her iki cookie için kullanılır.
func (s *TokenService) ClearedCookie(name string) *http.Cookie {
	c := s.cookie(name, "", 0)
	c.MaxAge = -1
	return c
}

func (s *TokenService) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.cookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// AccessExpirySeconds, access token ömrünü saniye cinsinden döner.
func (s *TokenService) AccessExpirySeconds() int {
	return ParseExpirySeconds(s.accessExpiry)
}

// RefreshExpirySeconds, refresh token ömrünü saniye cinsinden döner.
func (s *TokenService) RefreshExpirySeconds() int {
	return ParseExpirySeconds(s.refreshExpiry)
}

// expiryPattern: sayı + birim (s/m/h/d). "15m", "7d" gibi.
var expiryPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// defaultExpirySeconds, parse edilemeyen expiry string'i için fallback:
// 15 dakika.
const defaultExpirySeconds = 900

// ParseExpirySeconds, "15m" / "7d" gibi duration string'ini saniyeye
// çevirir. time.ParseDuration "d" birimini desteklemediği için kendi
// parser'ımız var. Geçersiz input sessizce default'a düşer — config
// hatası token'sız kalmaya yol açmaz.
func ParseExpirySeconds(expiry string) int {
	match := expiryPattern.FindStringSubmatch(expiry)
	if match == nil {
		return defaultExpirySeconds
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return defaultExpirySeconds
	}

	switch match[2] {
	case "s":
		return value
	case "m":
		return value * 60
	case "h":
		return value * 60 * 60
	case "d":
		return value * 60 * 60 * 24
	default:
		return defaultExpirySeconds
	}
}

// randomHex, n byte kriptografik rastgelelik üretip hex encode eder.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
