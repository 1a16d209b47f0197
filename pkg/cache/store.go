// Package cache, şifre sıfırlama token'larının TTL'li key-value store'unu
// soyutlar.
//
// Store'da iki tür anahtar yaşar:
//
//	password_reset:<sha256hex>    → userID   (redemption lookup)
//	password_reset_email:<email>  → sha256hex (duplicate istek rate limit'i)
//
// Plaintext token ASLA saklanmaz — sadece SHA256 hash'i anahtar olur.
// Store sızsa bile token'lar kullanılamaz.
//
// İki implementasyon vardır: Redis (production) ve in-memory (development
// ve testler). Service katmanı ResetTokenStore interface'ine bağımlıdır,
// hangisinin arkada olduğunu bilmez.
package cache

import (
	"context"
	"time"
)

// Key prefix'leri — Redis'te diğer verilerle çakışmayı önler.
const (
	resetTokenPrefix = "password_reset:"
	resetEmailPrefix = "password_reset_email:"
)

// ResetTokenTTL, reset token'larının yaşam süresi.
const ResetTokenTTL = 5 * time.Minute

// ResetTokenStore, reset token key çiftinin store operasyonları.
//
// Get'ler cache-miss durumunda ("", nil) döner — yokluk bir hata değildir,
// akış "token yok/süresi dolmuş" dalına girer. Error sadece store'un
// kendisi ulaşılamazsa döner.
type ResetTokenStore interface {
	// SetResetPair, iki anahtarı BİRLİKTE yazar: hash→userID ve
	// email→hash, ikisi de aynı TTL ile. Yazma atomiktir veya her iki
	// yazmanın tamamlanması birlikte beklenir — tek anahtarın yazılıp
	// diğerinin yazılmadığı durumda redemption not-found gibi davranır.
	SetResetPair(ctx context.Context, tokenHash, userID, email string, ttl time.Duration) error

	// GetUserIDByToken, hash'e karşılık gelen userID'yi döner.
	GetUserIDByToken(ctx context.Context, tokenHash string) (string, error)

	// GetTokenByEmail, email'e karşılık gelen aktif token hash'ini döner.
	GetTokenByEmail(ctx context.Context, email string) (string, error)

	// DeleteResetPair, iki anahtarı da siler. Olmayan anahtarı silmek
	// no-op'tur — eşzamanlı redemption denemeleri güvenle yarışabilir.
	DeleteResetPair(ctx context.Context, tokenHash, email string) error

	// Close, store bağlantısını/arka plan işlerini kapatır.
	Close() error
}

func tokenKey(tokenHash string) string { return resetTokenPrefix + tokenHash }
func emailKey(email string) string     { return resetEmailPrefix + email }
