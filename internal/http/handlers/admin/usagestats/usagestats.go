// Package usagestats реализует HTTP-обработчик административного обзора
// счётчиков использования за все дни.
package usagestats

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

// Service описывает интерфейс трекера квот.
type Service interface {
	Stats(ctx context.Context) ([]*models.UsageLog, error)
}

// Handler управляет HTTP-запросами на статистику использования.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.usagestats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to list usage stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list usage stats"))
		return
	}

	render.JSON(w, r, response.OKWithData(stats))
}
