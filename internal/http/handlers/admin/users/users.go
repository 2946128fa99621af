// Package users реализует HTTP-обработчик административного списка
// пользователей.
package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ai-pro-platform/internal/http/response"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// Service описывает интерфейс сервиса пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Handler управляет HTTP-запросами на список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
