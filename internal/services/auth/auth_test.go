package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geobee/geobee/internal/lib/apperr"
	customjwt "github.com/geobee/geobee/internal/lib/jwt"
	"github.com/geobee/geobee/internal/lib/password"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/models"
	services "github.com/geobee/geobee/internal/services/auth"
	"github.com/geobee/geobee/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) UserExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		userName   string
		email      string
		password   string
		setupMocks func(r *UserRepoMock)
		wantID     string
		wantErr    error
		wantKind   apperr.Kind
	}{
		{
			name:     "successful registration",
			userName: "  Ann  ",
			email:    " Ann@Example.COM ",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("UserExists", mock.Anything, "ann@example.com").Return(false, nil).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "ann@example.com" &&
						user.Name == "Ann" &&
						password.CompareHash(user.PasswordHash, "password123") == nil
				})).Return("some-uuid-string", nil).Once()
			},
			wantID: "some-uuid-string",
		},
		{
			name:       "missing name",
			userName:   "   ",
			email:      "ann@example.com",
			password:   "password123",
			setupMocks: func(*UserRepoMock) {},
			wantErr:    services.ErrMissingFields,
			wantKind:   apperr.InvalidArgument,
		},
		{
			name:       "missing password",
			userName:   "Ann",
			email:      "ann@example.com",
			setupMocks: func(*UserRepoMock) {},
			wantErr:    services.ErrMissingFields,
			wantKind:   apperr.InvalidArgument,
		},
		{
			name:     "duplicate email differing in case",
			userName: "Ann",
			email:    "ANN@example.com",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("UserExists", mock.Anything, "ann@example.com").Return(true, nil).Once()
			},
			wantErr:  services.ErrEmailExists,
			wantKind: apperr.Conflict,
		},
		{
			name:     "unique violation on insert",
			userName: "Ann",
			email:    "ann@example.com",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("UserExists", mock.Anything, "ann@example.com").Return(false, nil).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).
					Return("", fmt.Errorf("storage.CreateUser: %w", repository.ErrAlreadyExists)).Once()
			},
			wantErr:  services.ErrEmailExists,
			wantKind: apperr.Conflict,
		},
		{
			name:     "repository error",
			userName: "Ann",
			email:    "ann@example.com",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("UserExists", mock.Anything, "ann@example.com").Return(false, errors.New("db error")).Once()
			},
			wantKind: apperr.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(sl.Discard(), repo, jwtMock)

			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			if tt.wantID != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"

	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		ID:           "user-1",
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: hashedPassword,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
		wantKind   apperr.Kind
	}{
		{
			name:     "successful login",
			email:    " ANN@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "user-1", "ann@example.com", "user").Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").
					Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", repository.ErrNotFound)).Once()
			},
			wantErr:  services.ErrInvalidCredentials,
			wantKind: apperr.Unauthenticated,
		},
		{
			name:     "wrong password",
			email:    "ann@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(testUser, nil).Once()
			},
			wantErr:  services.ErrInvalidCredentials,
			wantKind: apperr.Unauthenticated,
		},
		{
			name:       "missing password",
			email:      "ann@example.com",
			setupMocks: func(*UserRepoMock, *JwtMakerMock) {},
			wantErr:    services.ErrMissingFields,
			wantKind:   apperr.InvalidArgument,
		},
		{
			name:     "token generation error",
			email:    "ann@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "user-1", "ann@example.com", "user").Return("", errors.New("token error")).Once()
			},
			wantKind: apperr.Internal,
		},
		{
			name:     "repository error",
			email:    "ann@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(nil, errors.New("db down")).Once()
			},
			wantKind: apperr.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(sl.Discard(), repo, jwtMock)

			tt.setupMocks(repo, jwtMock)

			token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantToken != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			} else {
				require.Error(t, err)
				assert.Empty(t, token)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginFailuresIndistinguishable(t *testing.T) {
	hashed, err := password.GetHash("secret")
	require.NoError(t, err)

	repo := new(UserRepoMock)
	repo.On("GetUserByEmail", mock.Anything, "ann@example.com").
		Return(&models.User{ID: "user-1", Email: "ann@example.com", PasswordHash: hashed}, nil)
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)
	svc := services.NewAuthService(sl.Discard(), repo, new(JwtMakerMock))

	_, wrongPassword := svc.Login(context.Background(), "ann@example.com", "nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "nope")

	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, "Invalid credentials", unknownEmail.Error())
}
