// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern: CRUD işlemleri soyutlanır, service katmanı doğrudan
// SQL yazmaz — interface üzerinden çalışır. Mock repository ile DB olmadan
// test edilebilir; SQLite'tan başka bir store'a geçiş sadece yeni
// implementasyon gerektirir.
package repository

import (
	"context"

	"github.com/typerone/server/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// Get'ler kullanıcıyı TÜM alanlarıyla (password hash ve session token
// dahil) döner — API'ye çıkmadan önce sanitize etmek çağıranın işidir
// (models.User.Public). Bulunamayan kayıt pkg.ErrNotFound döner.
type UserRepository interface {
	// Create, yeni kullanıcı kaydı oluşturur. Username veya email
	// çakışırsa pkg.ErrAlreadyExists kind'ında, çakışan alanı
	// mesajında belirten bir hata döner.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePassword, şifre hash'ini günceller. Yeni bcrypt hash alır —
	// hash'leme service katmanında yapılır.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// UpdateSessionToken, kullanıcının aktif session token'ını değiştirir.
	// nil geçmek oturumu kapatır (logout) — o andan itibaren daha önce
	// verilmiş TÜM token'lar session mismatch ile reddedilir.
	UpdateSessionToken(ctx context.Context, userID string, sessionToken *string) error

	// UpdateLastLogin, son giriş zamanını şimdiye çeker.
	UpdateLastLogin(ctx context.Context, userID string) error
}
