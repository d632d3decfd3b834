// Package register реализует HTTP-обработчик регистрации пользователя.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/lib/sl"
)

// MsgRegistered тело успешного ответа.
const MsgRegistered = "User registered successfully"

// Request — входные данные для регистрации
type Request struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, name, email, password string) (string, error)
}

// Handler обрабатывает HTTP-запросы регистрации пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler, который делегирует регистрацию сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись. Email приводится к нижнему регистру.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Имя, email и пароль"
// @Success 201 {object} map[string]string "Пользователь зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.ErrorJSON(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.ErrorJSON(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	id, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("user_id", id))
	response.JSON(w, r, http.StatusCreated, map[string]string{"message": MsgRegistered})
}
