package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizdash/server/internal/domain"
)

// UserRepository exposes typed DB operations for account flows.
type UserRepository struct {
	db DB
}

// NewUserRepository wraps a pgx pool for user-specific operations.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account. Duplicate usernames or emails surface as
// domain.ErrUsernameTaken / domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.New()
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (user_id, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		user.ID, user.Username, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		switch violatedConstraint(err) {
		case "users_username_key":
			return domain.User{}, domain.ErrUsernameTaken
		case "users_email_key":
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

// GetByID fetches a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.getOne(ctx, `WHERE user_id = $1`, id)
}

// RecordLogin stamps the last login timestamp.
func (r *UserRepository) RecordLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx,
		`SELECT user_id, username, email, password_hash, created_at, last_login_at
		 FROM users `+where,
		arg,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}
