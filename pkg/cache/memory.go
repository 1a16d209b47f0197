package cache

import (
	"context"
	"sync"
	"time"
)

// entry, in-memory store'daki tek bir kayıttır.
type entry struct {
	value     string
	expiresAt time.Time
}

// memoryStore, ResetTokenStore'un in-memory implementasyonu.
//
// Development'ta (REDIS_ADDR boş) ve testlerde kullanılır — davranışı
// Redis implementasyonuyla birebir aynıdır: TTL, cache-miss → ("", nil),
// idempotent delete. Tek instance deploy'da production için de yeterlidir
// ama process restart'ta aktif reset token'lar kaybolur.
//
// sync.Mutex ile korunur. Süresi dolan entry Get sırasında görmezden
// gelinir; fiziksel silme arka plan goroutine'i ile periyodik yapılır —
// uzun çalışan process'te map şişmez.
type memoryStore struct {
	mu          sync.Mutex
	entries     map[string]entry
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewMemoryStore, in-memory ResetTokenStore oluşturur ve temizleme
// goroutine'ini başlatır.
func NewMemoryStore() ResetTokenStore {
	s := &memoryStore{
		entries:     make(map[string]entry),
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.stopCleanup:
				return
			}
		}
	}()

	return s
}

// SetResetPair, iki anahtarı tek lock altında yazar — atomik çift.
func (s *memoryStore) SetResetPair(_ context.Context, tokenHash, userID, email string, ttl time.Duration) error {
	expires := time.Now().Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[tokenKey(tokenHash)] = entry{value: userID, expiresAt: expires}
	s.entries[emailKey(email)] = entry{value: tokenHash, expiresAt: expires}
	return nil
}

func (s *memoryStore) GetUserIDByToken(_ context.Context, tokenHash string) (string, error) {
	return s.get(tokenKey(tokenHash)), nil
}

func (s *memoryStore) GetTokenByEmail(_ context.Context, email string) (string, error) {
	return s.get(emailKey(email)), nil
}

func (s *memoryStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return ""
	}
	return e.value
}

// DeleteResetPair, iki anahtarı da siler. delete() olmayan key'de no-op.
func (s *memoryStore) DeleteResetPair(_ context.Context, tokenHash, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, tokenKey(tokenHash))
	delete(s.entries, emailKey(email))
	return nil
}

// Close, temizleme goroutine'ini durdurur. Birden fazla çağrı güvenlidir.
func (s *memoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// evictExpired, süresi dolan entry'leri map'ten fiziksel olarak siler.
func (s *memoryStore) evictExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
