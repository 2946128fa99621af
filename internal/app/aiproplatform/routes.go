// Package aiproplatform предоставляет маршруты для основного приложения.
package aiproplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	adminusers "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/admin/usagestats"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/auth/register"
	chatquota "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/chat/quota"
	chatsend "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/chat/send"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/payment/paymentapprove"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/payment/paymentreject"
	planlist "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/plan/list"
	planremove "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/plan/remove"
	plansave "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/plan/save"
	settingsread "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/settings/read"
	settingsupdate "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/settings/update"
	subscriptionread "github.com/magabrotheeeer/ai-pro-platform/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/middlewarectx"
	libjwt "github.com/magabrotheeeer/ai-pro-platform/internal/lib/jwt"
	accessservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/access"
	authservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/auth"
	chatservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/chat"
	paymentservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/payment"
	planservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/plan"
	quotaservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/quota"
	settingsservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/settings"
	subscriptionservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/subscription"
)

// Services — сервисы, необходимые маршрутам.
type Services struct {
	JWTMaker      libjwt.Maker
	Clock         clock.Clock
	Auth          *authservice.Service
	Chat          *chatservice.Service
	Access        *accessservice.Service
	Plans         *planservice.Service
	Payments      *paymentservice.Service
	Subscriptions *subscriptionservice.Ledger
	Settings      *settingsservice.Service
	Quota         *quotaservice.Tracker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.MaintenanceMiddleware(logger, s.Settings))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/chat", chatsend.New(logger, s.Chat).ServeHTTP)
			r.Get("/chat/quota", chatquota.New(logger, s.Access, s.Clock).ServeHTTP)
			r.Get("/plans", planlist.New(logger, s.Plans).ServeHTTP)
			r.Get("/subscriptions/my", subscriptionread.New(logger, s.Subscriptions).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, s.Payments).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, s.Payments).ServeHTTP)
			r.Get("/settings", settingsread.New(logger, s.Settings).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/payments/{id}/approve", paymentapprove.New(logger, s.Payments).ServeHTTP)
				r.Post("/payments/{id}/reject", paymentreject.New(logger, s.Payments).ServeHTTP)
				r.Post("/plans", plansave.New(logger, s.Plans).ServeHTTP)
				r.Delete("/plans/{id}", planremove.New(logger, s.Plans).ServeHTTP)
				r.Put("/settings", settingsupdate.New(logger, s.Settings).ServeHTTP)
				r.Get("/admin/usage", usagestats.New(logger, s.Quota).ServeHTTP)
				r.Get("/admin/users", adminusers.New(logger, s.Auth).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
