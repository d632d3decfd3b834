// Package services содержит логику бизнес-уровня для регистрации и входа пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geobee/geobee/internal/lib/apperr"
	"github.com/geobee/geobee/internal/lib/jwt"
	"github.com/geobee/geobee/internal/lib/password"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/models"
	"github.com/geobee/geobee/internal/storage/repository"
)

var (
	ErrMissingFields      = apperr.New(apperr.InvalidArgument, "Missing fields")
	ErrEmailExists        = apperr.New(apperr.Conflict, "Email already exists")
	ErrInvalidCredentials = apperr.New(apperr.Unauthenticated, "Invalid credentials")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// UserExists проверяет, занят ли email.
	UserExists(ctx context.Context, email string) (bool, error)

	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за регистрацию и выдачу JWT.
type AuthService struct {
	log      *slog.Logger
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// NormalizeEmail обрезает пробелы и приводит email к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя с bcrypt-хэшем пароля.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (string, error) {
	const op = "services.auth.Register"

	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || rawPassword == "" {
		return "", ErrMissingFields
	}

	exists, err := s.users.UserExists(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return "", ErrEmailExists
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return "", apperr.Wrap(apperr.Conflict, ErrEmailExists.Message, err)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", id))
	return id, nil
}

// Login проверяет пароль и выдаёт JWT. Неизвестный email и неверный пароль
// неразличимы ни по ошибке, ни по времени ответа.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	email = NormalizeEmail(email)
	if email == "" || rawPassword == "" {
		return "", ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		_ = password.CompareDummy(rawPassword)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		s.log.Debug("password mismatch", slog.String("op", op), sl.Err(err))
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, jwt.RoleUser)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
