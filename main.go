// Package main, typerone backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Reset token store'u seç (Redis veya in-memory)
//  4. Email sender'ı seç (Resend veya log)
//  5. Repository'leri oluştur (DB bağlantısı ile)
//  6. Service'leri oluştur (repository + store + sender ile)
//  7. Handler'ları ve middleware'ları oluştur
//  8. HTTP router'ı kur, route'ları bağla
//  9. CORS yapılandır
//  10. HTTP Server'ı başlat
//  11. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
// Testler aynı bileşenleri fake'lerle kurar, monkey-patch gerekmez.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/typerone/server/config"
	"github.com/typerone/server/database"
	"github.com/typerone/server/handlers"
	"github.com/typerone/server/middleware"
	"github.com/typerone/server/pkg"
	"github.com/typerone/server/pkg/cache"
	"github.com/typerone/server/pkg/email"
	"github.com/typerone/server/pkg/ratelimit"
	"github.com/typerone/server/repository"
	"github.com/typerone/server/services"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] typerone server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (mode=%s port=%d)", cfg.Server.Mode, cfg.Server.Port)

	// 5xx yanıtlarında hata detayı sadece development'ta gösterilir.
	pkg.SetDevMode(cfg.Server.Mode == config.ModeDevelopment)

	// ─── 2. Database ───
	db, err := database.New(cfg.Database.Path, database.MigrationsFS())
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Reset Token Store ───
	//
	// REDIS_ADDR tanımlıysa Redis, değilse in-memory store. İkisi de aynı
	// interface'i implement eder — service katmanı farkı bilmez.
	var store cache.ResetTokenStore
	if cfg.Redis.Addr != "" {
		store, err = cache.NewRedisStore(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("[main] failed to connect to redis: %v", err)
		}
		log.Printf("[main] reset token store: redis (%s)", cfg.Redis.Addr)
	} else {
		store = cache.NewMemoryStore()
		log.Println("[main] reset token store: in-memory (REDIS_ADDR not set)")
	}
	defer store.Close()

	// ─── 4. Email Sender ───
	var mailer email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.AppURL)
		log.Println("[main] email sender: resend")
	} else {
		mailer = email.NewLogSender(cfg.Email.AppURL)
		log.Println("[main] email sender: log only (RESEND_API_KEY not set)")
	}

	// ─── 5. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)

	// ─── 6. Service Layer ───
	tokenService := services.NewTokenService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
		cfg.Cookie.Domain,
		cfg.Server.IsProduction(),
	)
	authService := services.NewAuthService(userRepo, tokenService, store, mailer)

	// ─── 7. Handler ve Middleware Layer ───
	//
	// Login ve forgot-password ayrı limiter kullanır — login denemeleri
	// reset hakkını, reset istekleri login hakkını tüketmez.
	loginLimiter := ratelimit.New(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	defer loginLimiter.Close()
	resetLimiter := ratelimit.New(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	defer resetLimiter.Close()

	authHandler := handlers.NewAuthHandler(authService, tokenService, loginLimiter, resetLimiter)
	testHandler := handlers.NewTypingTestHandler()
	raceHandler := handlers.NewRaceHandler()
	leaderboardHandler := handlers.NewLeaderboardHandler()
	statsHandler := handlers.NewStatsHandler()
	userHandler := handlers.NewUserHandler()

	authMiddleware := middleware.NewAuth(tokenService, userRepo)

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": cfg.Server.Mode,
		})
	})

	// Auth — public endpoint'ler
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)

	// Auth — korumalı endpoint'ler
	mux.Handle("POST /api/auth/logout", authMiddleware.RequireFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", authMiddleware.RequireFunc(authHandler.Me))

	// Typing tests (solo)
	mux.HandleFunc("GET /api/tests/new", testHandler.New)
	mux.HandleFunc("POST /api/tests/submit", testHandler.Submit)
	mux.HandleFunc("GET /api/tests/results/{resultId}", testHandler.GetResult)
	mux.HandleFunc("GET /api/tests/texts", testHandler.Texts)
	mux.HandleFunc("GET /api/tests/daily", testHandler.Daily)

	// Races — create host kimliği gerektirir, history kullanıcıya özeldir
	mux.Handle("POST /api/races/create", authMiddleware.RequireFunc(raceHandler.Create))
	mux.HandleFunc("GET /api/races/lobby", raceHandler.Lobby)
	mux.Handle("GET /api/races/history", authMiddleware.RequireFunc(raceHandler.History))
	mux.HandleFunc("POST /api/races/quick-match", raceHandler.QuickMatch)
	mux.HandleFunc("GET /api/races/{raceId}", raceHandler.Get)
	mux.HandleFunc("POST /api/races/{raceId}/join", raceHandler.Join)
	mux.HandleFunc("POST /api/races/{raceId}/leave", raceHandler.Leave)
	mux.HandleFunc("POST /api/races/{raceId}/ready", raceHandler.Ready)
	mux.HandleFunc("POST /api/races/{raceId}/start", raceHandler.Start)
	mux.HandleFunc("POST /api/races/{raceId}/finish", raceHandler.Finish)
	mux.HandleFunc("DELETE /api/races/{raceId}", raceHandler.Cancel)

	// Leaderboards — friends kullanıcıya özeldir
	mux.HandleFunc("GET /api/leaderboards/global", leaderboardHandler.Global)
	mux.HandleFunc("GET /api/leaderboards/daily", leaderboardHandler.Daily)
	mux.HandleFunc("GET /api/leaderboards/weekly", leaderboardHandler.Weekly)
	mux.Handle("GET /api/leaderboards/friends", authMiddleware.RequireFunc(leaderboardHandler.Friends))

	// Stats — tümü kullanıcıya özel
	mux.Handle("GET /api/stats/overview", authMiddleware.RequireFunc(statsHandler.Overview))
	mux.Handle("GET /api/stats/progress", authMiddleware.RequireFunc(statsHandler.Progress))
	mux.Handle("GET /api/stats/records", authMiddleware.RequireFunc(statsHandler.Records))

	// Users — profil görüntüleme herkese açık
	mux.Handle("PATCH /api/users/profile", authMiddleware.RequireFunc(userHandler.UpdateProfile))
	mux.Handle("GET /api/users/history", authMiddleware.RequireFunc(userHandler.History))
	mux.HandleFunc("GET /api/users/{userId}", userHandler.GetProfile)

	// ─── 9. CORS ───
	//
	// AllowCredentials zorunlu: auth cookie'leri cross-origin istekte ancak
	// credentials ile gönderilir. Credentials + wildcard origin kombinasyonu
	// tarayıcılarca reddedilir, origin'ler explicit listelenir.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			cfg.Email.AppURL,        // frontend
			"http://localhost:3000", // Vite dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce HTTP server: yeni istek kabulü durur, mevcut istekler 5sn içinde
	// biter. Store ve DB defer'larla en son kapanır — in-flight istekler
	// hala onlara dokunabilir.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
