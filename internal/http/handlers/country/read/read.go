// Package read реализует HTTP-обработчик получения страны по ISO3-коду.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/models"
)

// Service ищет страну по коду.
type Service interface {
	GetByCode(ctx context.Context, code string) (*models.Country, error)
}

// Handler обрабатывает GET /country/{code}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует поиск страны сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Страна по коду
// @Description Ищет страну по ISO3-коду без учёта регистра.
// @Tags Countries
// @Produce json
// @Param code path string true "ISO3-код, например CAN"
// @Success 200 {object} models.Country
// @Failure 400 {object} response.ErrorResponse "Некорректный код"
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Страна не найдена"
// @Failure 502 {object} response.ErrorResponse "Источник данных недоступен"
// @Security BearerAuth
// @Router /country/{code} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.country.read"

	code := chi.URLParam(r, "code")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("code", code),
	)

	country, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, country)
}
