// Package list реализует HTTP-обработчик списка всех стран.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/models"
)

// Service отдаёт справочник стран.
type Service interface {
	GetAll(ctx context.Context) ([]models.Country, error)
}

// Handler обрабатывает HTTP-запросы списка стран.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует выдачу справочника сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список стран
// @Description Возвращает весь справочник, отсортированный по названию.
// @Tags Countries
// @Produce json
// @Success 200 {array} models.Country
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 502 {object} response.ErrorResponse "Источник данных недоступен"
// @Security BearerAuth
// @Router /countries [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.country.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	countries, err := h.service.GetAll(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Debug("countries listed", slog.Int("count", len(countries)))
	response.JSON(w, r, http.StatusOK, countries)
}
