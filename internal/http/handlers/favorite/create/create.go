// Package create реализует HTTP-обработчик добавления страны в избранное.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geobee/geobee/internal/http/handlers/favorite"
	"github.com/geobee/geobee/internal/http/middlewarectx"
	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/models"
)

// Request — тело запроса. Поля разбираются вручную, чтобы нестроковые
// значения не ломали декодирование.
type Request struct {
	CountryCode json.RawMessage `json:"countryCode"`
	Label       json.RawMessage `json:"label"`
	Note        json.RawMessage `json:"note"`
}

// Service добавляет избранное.
type Service interface {
	Create(ctx context.Context, userID, countryCode string, label, note *string) (*models.Favorite, error)
}

// Handler обрабатывает HTTP-запросы добавления в избранное.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует добавление сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Добавить страну в избранное
// @Description Создаёт запись избранного. label и note обрезаются до 100 символов.
// @Tags Favorites
// @Accept json
// @Produce json
// @Param request body Request true "countryCode, необязательные label и note"
// @Success 201 {object} models.Favorite "Создано, путь в заголовке Location"
// @Failure 400 {object} response.ErrorResponse "Некорректный код страны"
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 409 {object} response.ErrorResponse "Страна уже в избранном"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /favorites [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.create"

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

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.ErrorJSON(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	var code string
	if c := favorite.Text(req.CountryCode); c != nil {
		code = *c
	}

	created, err := h.service.Create(r.Context(), userID, code, favorite.Text(req.Label), favorite.Text(req.Note))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("favorite created", slog.String("favorite_id", created.ID))
	w.Header().Set("Location", favorite.Location(created.ID))
	response.JSON(w, r, http.StatusCreated, created)
}
