// Package services содержит логику избранных стран пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geobee/geobee/internal/lib/apperr"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/models"
	"github.com/geobee/geobee/internal/storage/repository"
)

const publishTimeout = 2 * time.Second

var (
	ErrInvalidCountryCode = apperr.New(apperr.InvalidArgument, "countryCode must be a 3-letter ISO code")
	ErrFavoriteExists     = apperr.New(apperr.Conflict, "Favorite already exists for this country")
	ErrAlreadyFavorited   = apperr.New(apperr.Conflict, "User already favorited this country")
	ErrInvalidID          = apperr.New(apperr.InvalidArgument, "Invalid favorite id")
	ErrEmptyUpdate        = apperr.New(apperr.InvalidArgument, "Provide non-empty label and/or note to update")
	ErrFavoriteNotFound   = apperr.New(apperr.NotFound, "Favorite not found")
	codePattern           = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// FavoriteRepository описывает хранилище избранного.
// Все изменения выполняются только в пределах записей userID.
type FavoriteRepository interface {
	FavoriteExists(ctx context.Context, userID, countryCode string) (bool, error)
	CreateFavorite(ctx context.Context, fav models.Favorite) (*models.Favorite, error)
	ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error)
	UpdateFavorite(ctx context.Context, userID, id string, patch models.FavoritePatch) (*models.Favorite, error)
	DeleteFavorite(ctx context.Context, userID, id string) error
}

// EventPublisher получает события об изменениях избранного.
type EventPublisher interface {
	Publish(ctx context.Context, event models.FavoriteEvent) error
}

// PublishObserver считает результаты публикации.
type PublishObserver interface {
	Published(eventType string, err error)
}

type nopObserver struct{}

func (nopObserver) Published(string, error) {}

// FavoriteService управляет избранным пользователя.
type FavoriteService struct {
	log       *slog.Logger
	repo      FavoriteRepository
	publisher EventPublisher
	observer  PublishObserver
	now       func() time.Time
}

// NewFavoriteService создаёт сервис. publisher может быть nil.
func NewFavoriteService(log *slog.Logger, repo FavoriteRepository, publisher EventPublisher, observer PublishObserver) *FavoriteService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &FavoriteService{
		log:       log,
		repo:      repo,
		publisher: publisher,
		observer:  observer,
		now:       time.Now,
	}
}

// CleanText обрезает пробелы и ограничивает длину; пустая строка означает отсутствие значения.
func CleanText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	if r := []rune(v); len(r) > models.MaxFavoriteTextLen {
		v = string(r[:models.MaxFavoriteTextLen])
	}
	return &v
}

// Create добавляет страну в избранное пользователя.
func (s *FavoriteService) Create(ctx context.Context, userID, countryCode string, label, note *string) (*models.Favorite, error) {
	const op = "services.favorite.Create"

	code := strings.TrimSpace(countryCode)
	if !codePattern.MatchString(code) {
		return nil, ErrInvalidCountryCode
	}
	code = strings.ToUpper(code)

	exists, err := s.repo.FavoriteExists(ctx, userID, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, ErrFavoriteExists
	}

	created, err := s.repo.CreateFavorite(ctx, models.Favorite{
		UserID:      userID,
		CountryCode: code,
		Label:       CleanText(label),
		Note:        CleanText(note),
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, apperr.Wrap(apperr.Conflict, ErrAlreadyFavorited.Message, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, models.EventFavoriteCreated, created.ID, userID, created.CountryCode)
	return created, nil
}

// List возвращает избранное пользователя, новые записи первыми.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	const op = "services.favorite.List"

	favorites, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return favorites, nil
}

// Update меняет label и/или note. nil-поля патча не передавались клиентом;
// поле, пустое после очистки, тоже не меняется.
func (s *FavoriteService) Update(ctx context.Context, userID, id string, patch models.FavoritePatch) (*models.Favorite, error) {
	const op = "services.favorite.Update"

	favID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	cleaned := models.FavoritePatch{
		Label: CleanText(patch.Label),
		Note:  CleanText(patch.Note),
	}
	if cleaned.Empty() {
		return nil, ErrEmptyUpdate
	}

	updated, err := s.repo.UpdateFavorite(ctx, userID, favID, cleaned)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFavoriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, models.EventFavoriteUpdated, updated.ID, userID, updated.CountryCode)
	return updated, nil
}

// Remove удаляет запись пользователя.
func (s *FavoriteService) Remove(ctx context.Context, userID, id string) error {
	const op = "services.favorite.Remove"

	favID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.repo.DeleteFavorite(ctx, userID, favID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFavoriteNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, models.EventFavoriteDeleted, favID, userID, "")
	return nil
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperr.Wrap(apperr.InvalidArgument, ErrInvalidID.Message, err)
	}
	return parsed.String(), nil
}

// publish не влияет на результат операции: ошибки только логируются.
func (s *FavoriteService) publish(ctx context.Context, eventType, favoriteID, userID, countryCode string) {
	const op = "services.favorite.publish"
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.Publish(ctx, models.FavoriteEvent{
		Type:        eventType,
		FavoriteID:  favoriteID,
		UserID:      userID,
		CountryCode: countryCode,
		OccurredAt:  s.now().UTC(),
	})
	s.observer.Published(eventType, err)
	if err != nil {
		s.log.Warn("failed to publish favorite event",
			slog.String("op", op),
			slog.String("type", eventType),
			slog.String("favorite_id", favoriteID),
			sl.Err(err),
		)
	}
}
