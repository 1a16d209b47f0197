package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typerone/server/database"
	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
)

// newTestRepo, geçici dosyada gerçek bir SQLite açar ve migration'ları
// uygular — repository testleri fake değil gerçek store davranışına
// (UNIQUE ihlalleri, RETURNING, RowsAffected) karşı koşar.
func newTestRepo(t *testing.T) UserRepository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), database.MigrationsFS())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Yarış testlerinde eşzamanlı yazarlar SQLITE_BUSY yerine sırayla
	// çalışsın — çakışmayı kilit değil UNIQUE index çözmeli.
	db.Conn.SetMaxOpenConns(1)

	return NewSQLiteUserRepo(db.Conn)
}

func newUser(username, email string) *models.User {
	session := "session-" + username
	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$12$hash-" + username,
		SessionToken: &session,
		IsActive:     true,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))

	// Create defaults ve RETURNING alanlarını doldurur.
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.UpdatedAt.IsZero())

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)
		require.NotNil(t, got.SessionToken)
		assert.Equal(t, "session-alice", *got.SessionToken)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "no-such-id")
		assert.ErrorIs(t, err, pkg.ErrNotFound)
	})
}

func TestCreateConflictNamesCollidingField(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com")))

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, newUser("alice", "other@example.com"))
		require.ErrorIs(t, err, pkg.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "username")
	})

	t.Run("duplicate email", func(t *testing.T) {
		// Sadece email çakışıyor — Conflict mesajı email'i göstermeli,
		// username'i değil.
		err := repo.Create(ctx, newUser("bob", "alice@example.com"))
		require.ErrorIs(t, err, pkg.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "email")
		assert.NotContains(t, err.Error(), "username")
	})
}

func TestConcurrentCreateRace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Aynı username ile N eşzamanlı kayıt: UNIQUE index hakemdir —
	// tam olarak biri başarır, kalanlar Conflict alır.
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = repo.Create(ctx, newUser("racer", "racer@example.com"))
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		default:
			require.ErrorIs(t, err, pkg.ErrAlreadyExists)
			conflicts++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestUpdateSessionToken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))

	rotated := "rotated-session"
	require.NoError(t, repo.UpdateSessionToken(ctx, user.ID, &rotated))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SessionToken)
	assert.Equal(t, rotated, *got.SessionToken)

	// nil → logout: kolon NULL'lanır.
	require.NoError(t, repo.UpdateSessionToken(ctx, user.ID, nil))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SessionToken)
}

func TestUpdatePassword(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$2a$12$new-hash"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$new-hash", got.PasswordHash)
}

func TestUpdateLastLogin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))
	require.Nil(t, user.LastLoginAt)

	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *got.LastLoginAt, time.Minute)
}

func TestUpdateMissingUserReturnsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "ghost", "hash"), pkg.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateSessionToken(ctx, "ghost", nil), pkg.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "ghost"), pkg.ErrNotFound)
}
