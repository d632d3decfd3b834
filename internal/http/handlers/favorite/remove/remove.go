// Package remove реализует HTTP-обработчик удаления избранного.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/geobee/geobee/internal/http/middlewarectx"
	"github.com/geobee/geobee/internal/http/response"
)

// Service удаляет избранное пользователя.
type Service interface {
	Remove(ctx context.Context, userID, id string) error
}

// Handler обрабатывает HTTP-запросы удаления избранного.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует удаление сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить избранное
// @Tags Favorites
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} map[string]bool "Запись удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /favorites/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.remove"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("favorite_id", id),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user id missing in context")
		response.ErrorJSON(w, r, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	if err := h.service.Remove(r.Context(), userID, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("favorite removed")
	response.JSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}
