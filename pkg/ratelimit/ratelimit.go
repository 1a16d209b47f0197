// Package ratelimit — IP bazlı sliding-window rate limiting.
//
// Login brute-force ve forgot-password spam koruması için kullanılır.
// Her IP için pencere içindeki istek sayısı takip edilir; maxAttempts
// aşılırsa istek reddedilir. Başarılı login sonrası Reset() sayacı
// temizler — meşru kullanıcı bloke olmaz.
//
// Neden in-memory?
// Tek instance deploy'da Redis'e gitmek gereksiz network turu olur;
// reset token store'dan farklı olarak rate limit state'inin restart'ta
// kaybolması zararsızdır.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// bucket, bir IP adresi için istek sayacı ve pencere başlangıcı tutar.
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter, IP bazlı sliding-window rate limiter.
//
// Kullanım:
//
//	limiter := ratelimit.New(5, 2*time.Minute)
//	if !limiter.Allow(ip) { return 429 }
//	// başarılı login'de:
//	limiter.Reset(ip)
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New, yeni rate limiter oluşturur ve arka plan temizleme goroutine'ini
// başlatır. Temizlik her dakika süresi dolmuş bucket'ları siler —
// uzun çalışan sunucuda bellek sızıntısını önler.
func New(maxAttempts int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow, verilen IP'nin isteğine izin verilip verilmediğini döner.
// Her çağrı sayacı artırır — istek başarılı olsun veya olmasın.
func (l *Limiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[ip]
	if !exists {
		l.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > l.window {
		// Pencere dolmuş — yeni pencere başlat
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= l.maxAttempts
}

// Reset, başarılı işlem sonrası IP sayacını sıfırlar.
func (l *Limiter) Reset(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, ip)
}

// RetryAfterSeconds, limit aşıldığında kalan bekleme süresini saniye
// cinsinden döner — HTTP Retry-After header değeri.
func (l *Limiter) RetryAfterSeconds(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[ip]
	if !exists {
		return 0
	}

	remaining := l.window - time.Since(b.windowStart)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1 // +1 yuvarlama
}

// Close, temizleme goroutine'ini durdurur.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.stopCleanup)
	})
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, b := range l.buckets {
		if now.Sub(b.windowStart) > l.window {
			delete(l.buckets, ip)
		}
	}
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik: X-Forwarded-For (ilk IP) → X-Real-IP → RemoteAddr.
// Production'da uygulama genellikle reverse proxy arkasındadır;
// RemoteAddr o durumda proxy'nin IP'sidir.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
