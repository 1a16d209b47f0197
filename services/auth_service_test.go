package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
	"github.com/typerone/server/pkg/cache"
	"github.com/typerone/server/repository"
)

// ─── Fake'ler ───

// fakeUserRepo, map tabanlı in-memory UserRepository. Gerçek repo gibi
// unique constraint'leri uygular ve pkg sentinel'leriyle hata döner.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // id → user
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return pkg.Conflictf("username already exists")
		}
		if u.Email == user.Email {
			return pkg.Conflictf("email already exists")
		}
	}

	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	return r.update(userID, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *fakeUserRepo) UpdateSessionToken(_ context.Context, userID string, sessionToken *string) error {
	return r.update(userID, func(u *models.User) { u.SessionToken = sessionToken })
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	return r.update(userID, func(_ *models.User) {})
}

func (r *fakeUserRepo) update(userID string, mutate func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return pkg.ErrNotFound
	}
	mutate(u)
	return nil
}

// setActive, test senaryoları için hesabı aktif/pasif yapar.
func (r *fakeUserRepo) setActive(userID string, active bool) {
	_ = r.update(userID, func(u *models.User) { u.IsActive = active })
}

// recordingSender, gönderilen email'leri kaydeden fake EmailSender.
type recordingSender struct {
	mu          sync.Mutex
	resetEmails []string // reset email'i giden adresler
	resetTokens []string // email'e giden plaintext token'lar
	failReset   error    // SendPasswordReset bu hatayla başarısız olur
}

func (s *recordingSender) SendPasswordReset(_ context.Context, toEmail, _, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failReset != nil {
		return s.failReset
	}
	s.resetEmails = append(s.resetEmails, toEmail)
	s.resetTokens = append(s.resetTokens, token)
	return nil
}

func (s *recordingSender) SendWelcome(_ context.Context, _, _ string) error         { return nil }
func (s *recordingSender) SendPasswordChanged(_ context.Context, _, _ string) error { return nil }

func (s *recordingSender) resetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resetEmails)
}

func (s *recordingSender) lastResetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.resetTokens) == 0 {
		return ""
	}
	return s.resetTokens[len(s.resetTokens)-1]
}

// ─── Test kurulumu ───

type authFixture struct {
	svc    AuthService
	repo   *fakeUserRepo
	tokens *TokenService
	store  cache.ResetTokenStore
	sender *recordingSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	repo := newFakeUserRepo()
	tokens := newTestTokenService()
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	sender := &recordingSender{}

	return &authFixture{
		svc:    NewAuthService(repo, tokens, store, sender),
		repo:   repo,
		tokens: tokens,
		store:  store,
		sender: sender,
	}
}

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "Sup3r$ecret",
		ConfirmPassword: "Sup3r$ecret",
	}
}

func (f *authFixture) register(t *testing.T) *AuthResult {
	t.Helper()
	result, err := f.svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	return result
}

// ─── Register / Login ───

func TestRegisterLoginRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t)
	assert.Equal(t, "alice", reg.User.Username)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	login, err := f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", login.User.Username)

	// Register'da üretilen token'lar login'deki yeni session'a ait değil.
	assert.NotEqual(t, reg.AccessToken, login.AccessToken)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	t.Run("duplicate username", func(t *testing.T) {
		req := registerRequest()
		req.Email = "other@example.com"
		_, err := f.svc.Register(ctx, req)
		assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		req := registerRequest()
		req.Username = "bob"
		_, err := f.svc.Register(ctx, req)
		assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
	})
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	req := registerRequest()
	req.Password = "weak"
	req.ConfirmPassword = "weak"

	_, err := f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestLoginGenericCredentialErrors(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	_, missingErr := f.svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "Sup3r$ecret"})
	_, wrongErr := f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Wr0ng$pass"})

	// İki farklı neden AYNI mesajı üretmeli — error text'inden hesap
	// varlığı çıkarılamaz.
	require.ErrorIs(t, missingErr, pkg.ErrUnauthorized)
	require.ErrorIs(t, wrongErr, pkg.ErrUnauthorized)
	assert.Equal(t, missingErr.Error(), wrongErr.Error())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t)

	f.repo.setActive(reg.User.ID, false)

	_, err := f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Sup3r$ecret"})
	require.ErrorIs(t, err, pkg.ErrUnauthorized)
	assert.Contains(t, err.Error(), "inactive")
}

// ─── Session lifecycle ───

func TestSingleActiveSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	first, err := f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Sup3r$ecret"})
	require.NoError(t, err)

	// İkinci login session token'ı rotate eder.
	_, err = f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Sup3r$ecret"})
	require.NoError(t, err)

	// İlk login'in refresh token'ı artık ölü.
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t)

	require.NoError(t, f.svc.Logout(ctx, reg.User.ID))

	_, err := f.svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Logout sonrası tekrar login mümkün ve yeni session kullanılabilir.
	login, err := f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Sup3r$ecret"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshIssuesNewAccessTokenOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t)

	accessToken, err := f.svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)

	// Yeni access token aynı session'a bağlı — rotation yok.
	claims, err := f.tokens.VerifyAccessToken(accessToken)
	require.NoError(t, err)

	user, err := f.repo.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.SessionToken)
	assert.Equal(t, *user.SessionToken, claims.SessionToken)
}

func TestRefreshRejectsAccessAfterDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t)

	f.repo.mu.Lock()
	delete(f.repo.users, reg.User.ID)
	f.repo.mu.Unlock()

	_, err := f.svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

// ─── Forgot password ───

func TestForgotPasswordSendsResetEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	err := f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, f.sender.resetCount())

	// Store'da plaintext token değil hash'i anahtar.
	token := f.sender.lastResetToken()
	userID, err := f.store.GetUserIDByToken(ctx, f.tokens.HashToken(token))
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	raw, err := f.store.GetUserIDByToken(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestForgotPasswordByUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	err := f.svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Identifier: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.sender.resetCount())
}

func TestForgotPasswordAntiEnumeration(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	// Olmayan kullanıcı → hata yok, email yok.
	err := f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "ghost@example.com"})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.sender.resetCount())

	// Pasif hesap → aynı sessiz davranış.
	user, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	f.repo.setActive(user.ID, false)

	err = f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice"})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.sender.resetCount())
}

func TestForgotPasswordSilentRateLimit(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	req := &models.ForgotPasswordRequest{Identifier: "alice@example.com"}
	require.NoError(t, f.svc.ForgotPassword(ctx, req))
	require.NoError(t, f.svc.ForgotPassword(ctx, req))

	// İkinci istek sessizce yutulur: tek email, tek token.
	assert.Equal(t, 1, f.sender.resetCount())
}

func TestForgotPasswordCleansUpOnEmailFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	f.sender.failReset = errors.New("smtp down")

	err := f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice@example.com"})
	require.ErrorIs(t, err, pkg.ErrInternal)

	// Token çifti temizlenmiş olmalı — sonraki istek rate limit'e takılmaz.
	existing, err := f.store.GetTokenByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, existing)
}

// ─── Reset password ───

func TestResetPasswordSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	require.NoError(t, f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice"}))
	token := f.sender.lastResetToken()

	err := f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:           token,
		Password:        "N3w$ecret!",
		ConfirmPassword: "N3w$ecret!",
	})
	require.NoError(t, err)

	// Yeni şifre ile login olunabilmeli, eskisi reddedilmeli.
	_, err = f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "N3w$ecret!"})
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Sup3r$ecret"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Aynı token ikinci kez kullanılamaz — farklı şifreyle bile.
	err = f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:           token,
		Password:        "An0ther$ecret!",
		ConfirmPassword: "An0ther$ecret!",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestResetPasswordRejectsUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
		Token:           "deadbeef",
		Password:        "N3w$ecret!",
		ConfirmPassword: "N3w$ecret!",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestResetPasswordRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t)

	require.NoError(t, f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice"}))
	token := f.sender.lastResetToken()

	err := f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:           token,
		Password:        "weak",
		ConfirmPassword: "weak",
	})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	// Validation hatası token'ı TÜKETMEZ — doğru şifreyle tekrar denenebilir.
	err = f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:           token,
		Password:        "N3w$ecret!",
		ConfirmPassword: "N3w$ecret!",
	})
	assert.NoError(t, err)
}

func TestResetPasswordGoneUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t)

	require.NoError(t, f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice"}))
	token := f.sender.lastResetToken()

	f.repo.mu.Lock()
	delete(f.repo.users, reg.User.ID)
	f.repo.mu.Unlock()

	err := f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:           token,
		Password:        "N3w$ecret!",
		ConfirmPassword: "N3w$ecret!",
	})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestResetPasswordPreservesActiveSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t)

	require.NoError(t, f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Identifier: "alice"}))
	token := f.sender.lastResetToken()

	require.NoError(t, f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:           token,
		Password:        "N3w$ecret!",
		ConfirmPassword: "N3w$ecret!",
	}))

	// Şifre sıfırlama session'a dokunmaz — mevcut refresh token çalışır.
	_, err := f.svc.Refresh(ctx, reg.RefreshToken)
	assert.NoError(t, err)
}

// repository.UserRepository sözleşmesine uygunluk derlemede kontrol edilir.
var _ repository.UserRepository = (*fakeUserRepo)(nil)
