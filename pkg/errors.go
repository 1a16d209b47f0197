// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir. errors.New() ile sabit error
// değişkenleri tanımlarız, karşılaştırma string yerine errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Hata "kind"ları kapalı bir kümedir — handler katmanı bu kind'ları
// HTTP status code'larına map'ler, service katmanı sadece bunları döner.
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level error'lar.
// Service katmanı bunları (genellikle fmt.Errorf("%w: ...") ile sarıp) döner,
// pkg.Error bunları status code'a çevirir.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)

// ValidationError, alan bazlı validation hatalarını taşır.
//
// Details map'i field → mesaj listesi şeklindedir; bir alan için birden
// fazla kural ihlali olabilir (ör. şifre hem kısa hem rakamsız).
// Tüm ihlaller tek seferde toplanır — ilk hatada durulmaz, client
// formu tek round-trip'te düzeltebilir.
type ValidationError struct {
	Message string
	Details map[string][]string
}

// Error, error interface implementasyonu.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap, ValidationError'ın ErrBadRequest kind'ına bağlanmasını sağlar.
// errors.Is(err, pkg.ErrBadRequest) → true.
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// NewValidationError, boş bir ValidationError oluşturur.
// Add ile alan hataları eklenir, ErrIfAny ile sonuçlanır.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: make(map[string][]string),
	}
}

// Add, bir alana hata mesajı ekler.
func (e *ValidationError) Add(field, message string) {
	e.Details[field] = append(e.Details[field], message)
}

// HasErrors, en az bir alan hatası olup olmadığını döner.
func (e *ValidationError) HasErrors() bool {
	return len(e.Details) > 0
}

// ErrIfAny, hata varsa ValidationError'ı error olarak döner, yoksa nil.
// Typed nil pointer'ı doğrudan error'a atamak "non-nil interface" tuzağına
// düşer — bu helper o tuzağı önler.
func (e *ValidationError) ErrIfAny() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// Conflictf, ErrAlreadyExists kind'ında formatlı hata üretir.
// Repository katmanı unique constraint ihlalinde hangi alanın
// çakıştığını mesajda belirtir.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAlreadyExists, fmt.Sprintf(format, args...))
}
