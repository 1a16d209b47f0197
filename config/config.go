// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Tüm değerler startup'ta BİR KEZ doğrulanır — eksik secret, kısa secret
// gibi hatalar ilk istekte değil process açılışında patlar.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Mode değerleri — MODE env variable'ının kabul ettiği set.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
	ModeTesting     = "testing"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
	Mode string // development | production | testing
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/typerone.db)
}

// RedisConfig, reset token cache'inin bağlantı ayarları.
// Addr boşsa Redis yerine in-memory store kullanılır (development kolaylığı).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig, token ayarları.
//
// Expiry'ler duration string'tir ("15m", "7d") — hem token ömrü hem cookie
// max-age bu string'lerden türetilir.
type JWTConfig struct {
	Secret        string // Token imzalama anahtarı — GİZLİ TUTULMALI, min 32 karakter
	AccessExpiry  string // ör: "15m"
	RefreshExpiry string // ör: "7d"
}

// CookieConfig, auth cookie ayarları.
type CookieConfig struct {
	Domain string
}

// EmailConfig, email gönderim ayarları.
// ResendAPIKey boşsa email'ler log'a yazılır (development).
type EmailConfig struct {
	ResendAPIKey string
	From         string
	AppURL       string // Reset link'lerinin base URL'i (ör: https://typerone.app)
}

// RateLimitConfig, IP bazlı login/forgot-password rate limit ayarları.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Load, environment variable'lardan Config oluşturur ve doğrular.
// .env dosyası varsa önce onu yükler — production'da bu dosya olmaz,
// gerçek env variable'lar kullanılır.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	mode := getEnv("MODE", ModeDevelopment)
	switch mode {
	case ModeDevelopment, ModeProduction, ModeTesting:
	default:
		return nil, fmt.Errorf("invalid MODE %q: must be development, production or testing", mode)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rateMax, err := strconv.Atoi(getEnv("LOGIN_RATE_MAX", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_MAX: %w", err)
	}

	rateWindow, err := strconv.Atoi(getEnv("LOGIN_RATE_WINDOW_SECONDS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_WINDOW_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: port,
			Mode: mode,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/typerone.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			AccessExpiry:  getEnv("JWT_ACCESS_EXPIRY", "15m"),
			RefreshExpiry: getEnv("JWT_REFRESH_EXPIRY", "7d"),
		},
		Cookie: CookieConfig{
			Domain: getEnv("COOKIE_DOMAIN", "localhost"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "noreply@typerone.app"),
			AppURL:       getEnv("APP_URL", "http://localhost:3000"),
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: rateMax,
			Window:      time.Duration(rateWindow) * time.Second,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction, production-like modda olup olmadığımızı döner.
// Cookie'lerin Secure attribute'u buna bağlıdır.
func (c *ServerConfig) IsProduction() bool {
	return c.Mode == ModeProduction
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
