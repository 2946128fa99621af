package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ai-pro-platform/internal/http/response"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// SettingsService отдаёт текущие настройки сайта.
type SettingsService interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
}

// MaintenanceMiddleware возвращает 503 для всех, кроме администраторов,
// пока включён режим обслуживания. Флаг проверяется здесь, на границе
// представления; ядро авторизации о нём не знает.
func MaintenanceMiddleware(log *slog.Logger, settings SettingsService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, err := settings.Get(r.Context())
			if err != nil {
				log.Error("failed to get site settings", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			role, _ := r.Context().Value(Role).(string)
			if current.MaintenanceMode && role != models.RoleAdmin {
				w.WriteHeader(http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("service is under maintenance"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
