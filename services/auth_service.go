package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
	"github.com/typerone/server/pkg/cache"
	"github.com/typerone/server/pkg/email"
	"github.com/typerone/server/repository"
)

// bcryptCost, şifre hash'leme maliyeti. Default 10'dan yüksek —
// brute-force maliyetini artırır, login başına ~250ms CPU bedeli kabul
// edilebilir.
const bcryptCost = 12

// AuthResult, başarılı register/login sonucu: kullanıcı + token çifti.
// Token'lar handler katmanında cookie'ye yazılır, body'ye ASLA çıkmaz.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// AuthService, kimlik doğrulama iş mantığı için interface.
type AuthService interface {
	// Register, yeni kullanıcı kaydı oluşturur ve oturumunu açar.
	Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error)

	// Login, kimlik bilgilerini doğrular ve YENİ bir oturum açar.
	// Önceki oturumun token'ları o anda geçersizleşir (tek aktif oturum).
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error)

	// Logout, kullanıcının session token'ını null'layarak dolaşımdaki
	// TÜM token'ları anında geçersizleştirir.
	Logout(ctx context.Context, userID string) error

	// Refresh, geçerli bir refresh token karşılığında yeni access token
	// üretir. Session token ROTATE EDİLMEZ — refresh oturumu uzatmaz,
	// sadece kısa ömürlü token'ı yeniler.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// GetUser, ID ile kullanıcıyı döner.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// ForgotPassword, şifre sıfırlama akışını başlatır. Kullanıcının var
	// olup olmadığını ASLA dışarı sızdırmaz — her durumda nil döner,
	// sadece store/email altyapı hatası error üretir.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error

	// ResetPassword, reset token karşılığında şifreyi değiştirir.
	// Token tek kullanımlıktır.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

// authService, AuthService implementasyonu.
type authService struct {
	users  repository.UserRepository
	tokens *TokenService
	store  cache.ResetTokenStore
	mailer email.EmailSender
}

// NewAuthService, constructor. Tüm bağımlılıklar dışarıdan verilir —
// testlerde fake repository/store/sender geçilebilir.
func NewAuthService(
	users repository.UserRepository,
	tokens *TokenService,
	store cache.ResetTokenStore,
	mailer email.EmailSender,
) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		store:  store,
		mailer: mailer,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	sessionToken, err := s.tokens.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		SessionToken: &sessionToken,
		IsActive:     true,
		Role:         models.RoleUser,
	}

	// Uniqueness kontrolünü store'a bırakıyoruz: önce SELECT yapıp sonra
	// INSERT etmek race condition'a açıktır, UNIQUE index zaten hakem.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.issueTokens(user, sessionToken)
	if err != nil {
		return nil, err
	}

	// Hoş geldin email'i best-effort: gönderilemezse kayıt başarısız OLMAZ.
	go func() {
		if err := s.mailer.SendWelcome(context.Background(), user.Email, user.Username); err != nil {
			log.Printf("[auth] welcome email failed for %s: %v", user.Username, err)
		}
	}()

	return result, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// "Kullanıcı yok" ile "şifre yanlış" AYNI mesajı döner —
			// username enumeration'a izin vermeyiz.
			return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is inactive", pkg.ErrUnauthorized)
	}

	// Session rotation: her login yeni session token üretir. Aynı hesabın
	// başka cihazdaki oturumu bu satırdan itibaren geçersizdir.
	sessionToken, err := s.tokens.GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateSessionToken(ctx, user.ID, &sessionToken); err != nil {
		return nil, err
	}
	user.SessionToken = &sessionToken

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// İstatistik alanı — login'i düşürecek kadar önemli değil.
		log.Printf("[auth] failed to update last login for %s: %v", user.Username, err)
	}

	return s.issueTokens(user, sessionToken)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	// session_token = NULL → dolaşımdaki tüm access/refresh token'lar
	// bir sonraki kullanımda session mismatch ile reddedilir.
	return s.users.UpdateSessionToken(ctx, userID, nil)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return "", fmt.Errorf("%w: session expired or invalid", pkg.ErrUnauthorized)
		}
		return "", err
	}

	// Token içindeki sessionToken claim'i DB'deki güncel değerle
	// eşleşmeli. Logout veya başka cihazdan login sonrası buraya düşer.
	if user.SessionToken == nil || *user.SessionToken != claims.SessionToken {
		return "", fmt.Errorf("%w: session expired or invalid", pkg.ErrUnauthorized)
	}

	if !user.IsActive {
		return "", fmt.Errorf("%w: account is inactive", pkg.ErrUnauthorized)
	}

	// Refresh yeni session BAŞLATMAZ: aynı session token ile sadece
	// access token yenilenir.
	return s.tokens.GenerateAccessToken(TokenPayload{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		SessionToken: claims.SessionToken,
	})
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	// Identifier email şeklindeyse email ile, değilse username ile ara.
	var user *models.User
	var err error
	if models.EmailRegex.MatchString(req.Identifier) {
		user, err = s.users.GetByEmail(ctx, req.Identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, req.Identifier)
	}

	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Anti-enumeration: kullanıcı yoksa da başarılı gibi davran.
			// Handler her durumda aynı generic mesajı döner.
			return nil
		}
		return err
	}

	if !user.IsActive {
		return nil
	}

	// Aynı email için aktif bir token zaten varsa yenisini üretme —
	// tekrarlanan istekler TTL dolana kadar sessizce yutulur. Hem email
	// spam'ini hem token üretim flood'unu keser.
	existing, err := s.store.GetTokenByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}

	token, hashedToken, err := s.tokens.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.store.SetResetPair(ctx, hashedToken, user.ID, user.Email, cache.ResetTokenTTL); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, token); err != nil {
		// Email gitmediyse token çifti çöptür — sil ki kullanıcı hemen
		// yeni istek atabilsin.
		if delErr := s.store.DeleteResetPair(ctx, hashedToken, user.Email); delErr != nil {
			log.Printf("[auth] failed to clean up reset pair after email failure: %v", delErr)
		}
		return fmt.Errorf("%w: failed to send reset email", pkg.ErrInternal)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	hashedToken := s.tokens.HashToken(req.Token)

	userID, err := s.store.GetUserIDByToken(ctx, hashedToken)
	if err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: user not found", pkg.ErrNotFound)
		}
		return err
	}
	if !user.IsActive {
		return fmt.Errorf("%w: user not found", pkg.ErrNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	// Tek kullanımlık: çift silinir. Delete idempotent olduğu için
	// eşzamanlı iki redemption denemesi güvenle yarışır — şifre en fazla
	// iki kez aynı akıştan geçer, token üçüncü kez kullanılamaz.
	if err := s.store.DeleteResetPair(ctx, hashedToken, user.Email); err != nil {
		log.Printf("[auth] failed to delete reset pair: %v", err)
	}

	// Aktif oturumlara dokunmayız — şifre değişikliği mevcut cihazdaki
	// oturumu düşürmez.

	go func() {
		if err := s.mailer.SendPasswordChanged(context.Background(), user.Email, user.Username); err != nil {
			log.Printf("[auth] password changed email failed for %s: %v", user.Username, err)
		}
	}()

	return nil
}

// issueTokens, kullanıcı için access + refresh token çifti üretir.
func (s *authService) issueTokens(user *models.User, sessionToken string) (*AuthResult, error) {
	payload := TokenPayload{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		SessionToken: sessionToken,
	}

	accessToken, err := s.tokens.GenerateAccessToken(payload)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(payload)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
