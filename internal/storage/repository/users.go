package repository

import (
	"context"
	"fmt"

	"github.com/geobee/geobee/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Повторный email возвращает ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (name, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash).Scan(&newID); err != nil {
		return "", classify(op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по нормализованному email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, password_hash, created_at, updated_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, classify(op, err)
	}
	return u, nil
}

// UserExists проверяет, занят ли email.
func (s *Storage) UserExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.UserExists"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, classify(op, err)
	}
	return exists, nil
}
