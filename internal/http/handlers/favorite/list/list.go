// Package list реализует HTTP-обработчик списка избранного пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/geobee/geobee/internal/http/middlewarectx"
	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/models"
)

// Service отдаёт избранное пользователя.
type Service interface {
	List(ctx context.Context, userID string) ([]models.Favorite, error)
}

// Handler обрабатывает HTTP-запросы списка избранного.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует выдачу избранного сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Избранное пользователя
// @Description Возвращает избранное текущего пользователя, новые записи первыми.
// @Tags Favorites
// @Produce json
// @Success 200 {array} models.Favorite
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /favorites [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user id missing in context")
		response.ErrorJSON(w, r, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	favorites, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}

	response.JSON(w, r, http.StatusOK, favorites)
}
