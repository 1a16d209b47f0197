package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/typerone/server/database"
	"github.com/typerone/server/models"
	"github.com/typerone/server/pkg"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor. UserRepository interface'i döner —
// çağıran taraf implementasyondan bağımsız kalır.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, session_token, avatar, bio, role, is_active, last_login_at, created_at, updated_at`

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, session_token, avatar, bio, role, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.SessionToken,
		user.Avatar,
		user.Bio,
		user.Role,
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		// UNIQUE ihlali → eşzamanlı kayıt yarışını store çözer, biz sadece
		// Conflict'e çevirip çakışan alanı söyleriz. SQLite hata metni
		// "UNIQUE constraint failed: users.email" formatındadır —
		// tablo.kolon üzerinden hangi alanın çakıştığı anlaşılır.
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return pkg.Conflictf("email already exists")
			}
			if strings.Contains(err.Error(), "users.username") {
				return pkg.Conflictf("username already exists")
			}
			return pkg.Conflictf("username or email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *sqliteUserRepo) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.SessionToken, &user.Avatar, &user.Bio, &user.Role,
		&user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *sqliteUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, userID)
}

func (r *sqliteUserRepo) UpdateSessionToken(ctx context.Context, userID string, sessionToken *string) error {
	return r.exec(ctx,
		`UPDATE users SET session_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		sessionToken, userID)
}

func (r *sqliteUserRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	return r.exec(ctx,
		`UPDATE users SET last_login_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID)
}

// exec, tek satır etkileyen UPDATE'leri çalıştırır.
// Hiçbir satır etkilenmediyse kullanıcı yok demektir → ErrNotFound.
func (r *sqliteUserRepo) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

// isUniqueViolation, SQLite UNIQUE constraint hatasını kontrol eder.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
