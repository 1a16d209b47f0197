// Package email, uygulama genelinde email gönderimi için soyutlama katmanı
// sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır. İki
// implementasyon vardır: Resend API (production) ve log'a yazan sender
// (development — API key yokken email içerikleri console'a düşer).
// Service katmanı interface'e bağımlıdır, hangisinin arkada olduğunu bilmez.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"
)

// EmailSender, email gönderimi için interface.
type EmailSender interface {
	// SendPasswordReset, şifre sıfırlama linki içeren email gönderir.
	// token plaintext'tir — store'da sadece hash'i yaşar, kullanıcıya
	// giden tek kopya bu email'dir.
	SendPasswordReset(ctx context.Context, toEmail, username, token string) error

	// SendWelcome, kayıt sonrası hoş geldin email'i gönderir.
	SendWelcome(ctx context.Context, toEmail, username string) error

	// SendPasswordChanged, başarılı şifre sıfırlama sonrası onay gönderir.
	SendPasswordChanged(ctx context.Context, toEmail, username string) error
}

// ─── Resend implementasyonu ───

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@typerone.app)
	appURL    string // Reset link'lerinin base URL'i
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
// fromEmail, Resend'de doğrulanmış domain altında olmalı.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, username, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)

	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>You requested to reset your password. Please use the link below to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>This link will expire in 5 minutes.</p>
<p>If you did not request this, please ignore this email.</p>
<p>Best regards,<br>TyperOne Team</p>`, username, resetLink, resetLink)

	return s.send(ctx, toEmail, "Password Reset Request", html)
}

func (s *resendSender) SendWelcome(ctx context.Context, toEmail, username string) error {
	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>Welcome to TyperOne! Your account has been successfully created.</p>
<p>Start improving your typing speed today!</p>
<p>Best regards,<br>TyperOne Team</p>`, username)

	return s.send(ctx, toEmail, "Welcome to TyperOne!", html)
}

func (s *resendSender) SendPasswordChanged(ctx context.Context, toEmail, username string) error {
	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your password has been successfully changed.</p>
<p>If you did not make this change, please contact support immediately.</p>
<p>Best regards,<br>TyperOne Team</p>`, username)

	return s.send(ctx, toEmail, "Password Changed Successfully", html)
}

func (s *resendSender) send(ctx context.Context, toEmail, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("TyperOne <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}
	return nil
}

// ─── Log implementasyonu (development) ───

// logSender, email'leri göndermek yerine log'a yazan EmailSender.
// RESEND_API_KEY tanımlı değilken kullanılır — reset token'ı görmek için
// development'ta mail kutusu gerekmez, console'a bakmak yeterlidir.
type logSender struct {
	appURL string
}

// NewLogSender, log tabanlı EmailSender oluşturur.
func NewLogSender(appURL string) EmailSender {
	return &logSender{appURL: appURL}
}

func (s *logSender) SendPasswordReset(_ context.Context, toEmail, username, token string) error {
	log.Printf("[email] password reset for %s <%s>: %s/reset-password?token=%s",
		username, toEmail, s.appURL, token)
	return nil
}

func (s *logSender) SendWelcome(_ context.Context, toEmail, username string) error {
	log.Printf("[email] welcome mail for %s <%s>", username, toEmail)
	return nil
}

func (s *logSender) SendPasswordChanged(_ context.Context, toEmail, username string) error {
	log.Printf("[email] password changed confirmation for %s <%s>", username, toEmail)
	return nil
}
