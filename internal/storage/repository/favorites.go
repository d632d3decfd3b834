package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geobee/geobee/internal/models"
)

const favoriteColumns = `id, user_id, country_code, label, note, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row rowScanner) (*models.Favorite, error) {
	var (
		f           models.Favorite
		label, note sql.NullString
	)
	if err := row.Scan(&f.ID, &f.UserID, &f.CountryCode, &label, &note, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if label.Valid {
		f.Label = &label.String
	}
	if note.Valid {
		f.Note = &note.String
	}
	return &f, nil
}

// CreateFavorite вставляет избранную страну и возвращает сохранённую запись.
// Повтор пары (user_id, country_code) возвращает ErrAlreadyExists.
func (s *Storage) CreateFavorite(ctx context.Context, fav models.Favorite) (*models.Favorite, error) {
	const op = "storage.CreateFavorite"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO favorites (user_id, country_code, label, note)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + favoriteColumns
	created, err := scanFavorite(s.DB.QueryRowContext(ctx, query,
		fav.UserID, fav.CountryCode, fav.Label, fav.Note))
	if err != nil {
		return nil, classify(op, err)
	}
	return created, nil
}

// FavoriteExists проверяет, есть ли у пользователя страна в избранном.
func (s *Storage) FavoriteExists(ctx context.Context, userID, countryCode string) (bool, error) {
	const op = "storage.FavoriteExists"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND country_code = $2)`
	if err := s.DB.QueryRowContext(ctx, query, userID, countryCode).Scan(&exists); err != nil {
		return false, classify(op, err)
	}
	return exists, nil
}

// ListFavorites возвращает избранное пользователя, новые записи первыми.
func (s *Storage) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	const op = "storage.ListFavorites"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + favoriteColumns + `
			  FROM favorites
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Favorite, 0)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateFavorite меняет label и/или note записи, принадлежащей пользователю.
// nil-поля патча не трогаются. Чужая или отсутствующая запись — ErrNotFound.
func (s *Storage) UpdateFavorite(ctx context.Context, userID, id string, patch models.FavoritePatch) (*models.Favorite, error) {
	const op = "storage.UpdateFavorite"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE favorites
			  SET label = COALESCE($3::text, label),
			      note = COALESCE($4::text, note),
			      updated_at = now()
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + favoriteColumns
	updated, err := scanFavorite(s.DB.QueryRowContext(ctx, query, id, userID, patch.Label, patch.Note))
	if err != nil {
		return nil, classify(op, err)
	}
	return updated, nil
}

// DeleteFavorite удаляет запись пользователя. Если ничего не удалено — ErrNotFound.
func (s *Storage) DeleteFavorite(ctx context.Context, userID, id string) error {
	const op = "storage.DeleteFavorite"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM favorites WHERE id = $1 AND user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return classify(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
