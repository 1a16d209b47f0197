// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Şifre hash'i ve session token API yanıtlarına ASLA çıkmaz — serileştirme
// User.Public() üzerinden explicit olarak yapılır, storage modeline
// gizli hook'lar bağlanmaz.
package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/typerone/server/pkg"
)

// Role, kullanıcının yetki seviyesini temsil eder.
// Go'da enum yoktur — typed constant'lar kullanılır.
type Role string

// İzin verilen Role değerleri.
const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// User, bir kullanıcıyı temsil eder.
//
// SessionToken, kullanıcının aktif oturumunun tek kaynağıdır (single source
// of truth): login'de yenisi üretilir, logout'ta null'lanır. Token'ların
// içine gömülen sessionToken claim'i bu değerle eşleşmiyorsa token
// geçersizdir — anlık logout ve tek-aktif-oturum bu mekanizmayla sağlanır.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // json:"-" → API response'a DAHİL ETME
	SessionToken *string    `json:"-"` // nullable — ilk login'e kadar nil
	Avatar       *string    `json:"avatar"`
	Bio          string     `json:"bio"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PublicUser, trust boundary'yi geçen kullanıcı görünümü.
// Şifre hash'i, session token gibi internal alanlar bu struct'ta yoktur —
// yanlışlıkla sızma yapısal olarak imkansız.
type PublicUser struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Avatar      *string    `json:"avatar"`
	Bio         string     `json:"bio"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Public, API yanıtları için sanitize edilmiş görünümü döner.
// Kullanıcı kaydı response'a çıkan HER yerde bu çağrılır.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// EmailRegex, basit email format kontrolü.
// Forgot-password akışında identifier'ın email mi username mi olduğunu
// ayırt etmek için de kullanılır.
var EmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// specialChars, şifrede kabul edilen özel karakter kümesi.
const specialChars = "!@#$%^&*(),.?\":{}|<>[]\\/'`~_=;+-"

// ValidatePasswordComplexity, şifre karmaşıklık kurallarını kontrol eder
// ve İHLAL EDİLEN HER kuralın mesajını döner — ilk hatada durmaz.
//
// Kurallar: en az 8 karakter, bir büyük harf, bir küçük harf, bir rakam,
// bir özel karakter.
func ValidatePasswordComplexity(password string) []string {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case strings.ContainsRune(specialChars, ch):
			hasSpecial = true
		}
	}

	var errs []string
	if utf8.RuneCountInString(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters")
	}
	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one number")
	}
	if !hasSpecial {
		errs = append(errs, "Password must contain at least one special character")
	}
	return errs
}

// validatePasswordFields, şifre + onay çiftini ortak kurallarla doğrular.
// Karmaşıklık ihlalleri "password" alanına, eşleşmeme AYRI bir
// "confirmPassword" hatası olarak yazılır — iki kural kümesi karışmaz.
func validatePasswordFields(ve *pkg.ValidationError, password, confirmPassword string) {
	for _, msg := range ValidatePasswordComplexity(password) {
		ve.Add("password", msg)
	}
	if password != confirmPassword {
		ve.Add("confirmPassword", "Passwords don't match")
	}
}

// RegisterRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate, RegisterRequest'in geçerli olup olmadığını kontrol eder.
// Tüm alan hataları tek ValidationError'da toplanır.
func (r *RegisterRequest) Validate() error {
	ve := pkg.NewValidationError("Validation failed")

	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 20 {
		ve.Add("username", "Username must be between 3 and 20 characters")
	}
	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			ve.Add("username", "Username can only contain letters, numbers, and underscores")
			break
		}
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		ve.Add("email", "Email is required")
	} else if !EmailRegex.MatchString(r.Email) {
		ve.Add("email", "Please provide a valid email address")
	}

	validatePasswordFields(ve, r.Password, r.ConfirmPassword)

	return ve.ErrIfAny()
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
// Login'de karmaşıklık kontrolü YOKTUR — mevcut şifre neyse o denenir,
// sadece alanların varlığı aranır.
func (r *LoginRequest) Validate() error {
	ve := pkg.NewValidationError("Validation failed")

	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		ve.Add("username", "Username is required")
	}
	if r.Password == "" {
		ve.Add("password", "Password is required")
	}

	return ve.ErrIfAny()
}

// ForgotPasswordRequest, "şifremi unuttum" isteği.
// Identifier, username veya email olabilir — şekline göre ayırt edilir.
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier"`
}

// Validate, ForgotPasswordRequest geçerlilik kontrolü.
func (r *ForgotPasswordRequest) Validate() error {
	ve := pkg.NewValidationError("Validation failed")

	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		ve.Add("identifier", "Username or email is required")
	}

	return ve.ErrIfAny()
}

// ResetPasswordRequest, şifre sıfırlama isteği.
// Token: email'deki link'ten alınan plaintext token.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate, ResetPasswordRequest geçerlilik kontrolü.
// Yeni şifre, kayıt ile AYNI karmaşıklık kurallarına tabidir.
func (r *ResetPasswordRequest) Validate() error {
	ve := pkg.NewValidationError("Validation failed")

	if r.Token == "" {
		ve.Add("token", "Reset token is required")
	}
	validatePasswordFields(ve, r.Password, r.ConfirmPassword)

	return ve.ErrIfAny()
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
