// Package update реализует HTTP-обработчик изменения label и note избранного.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geobee/geobee/internal/http/handlers/favorite"
	"github.com/geobee/geobee/internal/http/middlewarectx"
	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/models"
)

// Request — тело запроса. Отсутствующее поле остаётся nil.
type Request struct {
	Label json.RawMessage `json:"label"`
	Note  json.RawMessage `json:"note"`
}

// Service изменяет избранное пользователя.
type Service interface {
	Update(ctx context.Context, userID, id string, patch models.FavoritePatch) (*models.Favorite, error)
}

// Handler обрабатывает HTTP-запросы изменения избранного.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует изменение сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить избранное
// @Description Меняет label и/или note. Пустые после обрезки значения игнорируются.
// @Tags Favorites
// @Accept json
// @Produce json
// @Param id path string true "ID записи"
// @Param request body Request true "label и/или note"
// @Success 200 {object} models.Favorite
// @Failure 400 {object} response.ErrorResponse "Некорректный id или нечего менять"
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /favorites/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.update"

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

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.ErrorJSON(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), userID, id, models.FavoritePatch{
		Label: favorite.Text(req.Label),
		Note:  favorite.Text(req.Note),
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("favorite updated")
	response.JSON(w, r, http.StatusOK, updated)
}
