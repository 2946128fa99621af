// Package remove реализует HTTP-обработчик удаления плана из каталога.
// Доступен только администратору. Подписки и платежи со ссылкой на
// удалённый план остаются как есть.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ai-pro-platform/internal/http/response"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
)

// Service описывает интерфейс каталога планов.
type Service interface {
	Remove(ctx context.Context, planID string) (int64, error)
}

// Handler управляет HTTP-запросами на удаление плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	planID := chi.URLParam(r, "id")
	if planID == "" {
		log.Error("plan id missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("plan id is required"))
		return
	}

	count, err := h.service.Remove(r.Context(), planID)
	if err != nil {
		log.Error("failed to remove plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove plan"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}

	log.Info("plan removed", slog.String("plan_id", planID))
	render.JSON(w, r, response.OK())
}
