package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobee/geobee/internal/models"
)

const (
	testUserID = "6f1c7a52-0bb1-4d43-9d4b-7c6a6c1e2f10"
	testFavID  = "0b7e0bfb-7a9f-4b0e-9d37-4d3c7f1f0a11"
)

var favoriteRowColumns = []string{"id", "user_id", "country_code", "label", "note", "created_at", "updated_at"}

func newStorageWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewWithDB(db), mock
}

func strPtr(s string) *string { return &s }

func TestStorage_CreateUser(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id$`
	user := models.User{Name: "Ann", Email: "a@x.com", PasswordHash: "hash"}

	tests := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(q).WithArgs("Ann", "a@x.com", "hash").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
			},
			wantID: testUserID,
		},
		{
			name: "duplicate email",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(q).WithArgs("Ann", "a@x.com", "hash").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: ErrAlreadyExists,
		},
		{
			name: "db down",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(q).WithArgs("Ann", "a@x.com", "hash").
					WillReturnError(errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStorageWithMock(t)
			tt.setup(mock)

			id, err := s.CreateUser(context.Background(), user)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrAlreadyExists) {
					assert.ErrorIs(t, err, ErrAlreadyExists)
				} else {
					assert.Contains(t, err.Error(), "storage.CreateUser: db down")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestStorage_GetUserByEmail(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(
			sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
				AddRow(testUserID, "Ann", "a@x.com", "hash", now, now))

		u, err := s.GetUserByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, testUserID, u.ID)
		assert.Equal(t, "hash", u.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

		u, err := s.GetUserByEmail(context.Background(), "ghost@x.com")
		assert.Nil(t, u)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s, _ := newStorageWithMock(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.GetUserByEmail(ctx, "a@x.com")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStorage_UserExists(t *testing.T) {
	s, mock := newStorageWithMock(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.UserExists(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStorage_CreateFavorite(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+favorites\s*\(user_id,\s*country_code,\s*label,\s*note\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id, user_id`
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success with label only", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testUserID, "FRA", "Paris trip", nil).WillReturnRows(
			sqlmock.NewRows(favoriteRowColumns).AddRow(testFavID, testUserID, "FRA", "Paris trip", nil, now, now))

		got, err := s.CreateFavorite(context.Background(), models.Favorite{
			UserID: testUserID, CountryCode: "FRA", Label: strPtr("Paris trip"),
		})
		require.NoError(t, err)
		assert.Equal(t, testFavID, got.ID)
		require.NotNil(t, got.Label)
		assert.Equal(t, "Paris trip", *got.Label)
		assert.Nil(t, got.Note)
		assert.Equal(t, now, got.CreatedAt)
	})

	t.Run("unique violation", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testUserID, "FRA", nil, nil).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "favorites_user_country_key"})

		got, err := s.CreateFavorite(context.Background(), models.Favorite{UserID: testUserID, CountryCode: "FRA"})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("other constraint is not a conflict", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testUserID, "FRA", nil, nil).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

		_, err := s.CreateFavorite(context.Background(), models.Favorite{UserID: testUserID, CountryCode: "FRA"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestStorage_FavoriteExists(t *testing.T) {
	s, mock := newStorageWithMock(t)
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM favorites`).WithArgs(testUserID, "CAN").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := s.FavoriteExists(context.Background(), testUserID, "CAN")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_ListFavorites(t *testing.T) {
	q := `(?s)FROM\s+favorites\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC$`
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	t.Run("rows", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testUserID).WillReturnRows(
			sqlmock.NewRows(favoriteRowColumns).
				AddRow("id-2", testUserID, "CAN", nil, "trip", newer, newer).
				AddRow("id-1", testUserID, "FRA", "home", nil, older, older))

		got, err := s.ListFavorites(context.Background(), testUserID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "CAN", got[0].CountryCode)
		assert.Equal(t, "trip", *got[0].Note)
		assert.Equal(t, "FRA", got[1].CountryCode)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows(favoriteRowColumns))

		got, err := s.ListFavorites(context.Background(), testUserID)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestStorage_UpdateFavorite(t *testing.T) {
	q := `(?s)^UPDATE\s+favorites\s+SET\s+label\s*=\s*COALESCE\(\$3::text,\s*label\),\s*note\s*=\s*COALESCE\(\$4::text,\s*note\),\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("note only", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testFavID, testUserID, nil, "trip").WillReturnRows(
			sqlmock.NewRows(favoriteRowColumns).AddRow(testFavID, testUserID, "CAN", "home", "trip", now, now))

		got, err := s.UpdateFavorite(context.Background(), testUserID, testFavID, models.FavoritePatch{Note: strPtr("trip")})
		require.NoError(t, err)
		assert.Equal(t, "trip", *got.Note)
		assert.Equal(t, "home", *got.Label)
	})

	t.Run("not owned", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(q).WithArgs(testFavID, testUserID, "x", nil).WillReturnError(sql.ErrNoRows)

		got, err := s.UpdateFavorite(context.Background(), testUserID, testFavID, models.FavoritePatch{Label: strPtr("x")})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_DeleteFavorite(t *testing.T) {
	q := regexp.QuoteMeta(`DELETE FROM favorites WHERE id = $1 AND user_id = $2`)

	t.Run("deleted", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectExec(q).WithArgs(testFavID, testUserID).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.DeleteFavorite(context.Background(), testUserID, testFavID))
	})

	t.Run("nothing deleted", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectExec(q).WithArgs(testFavID, testUserID).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.DeleteFavorite(context.Background(), testUserID, testFavID), ErrNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectExec(q).WithArgs(testFavID, testUserID).WillReturnError(errors.New("db down"))

		err := s.DeleteFavorite(context.Background(), testUserID, testFavID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
