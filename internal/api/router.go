package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"poputchik/internal/config"
)

// ApiDependencies содержит зависимости обработчиков API.
type ApiDependencies struct {
	Config *config.Config
}

// SetupRoutes настраивает маршруты служебного HTTP API.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Api-Auth"},
		MaxAge:         300,
	}))

	// Публичные маршруты
	r.Get("/api/health", HealthHandler)
	r.Get("/api/routes", SearchRoutesHandler)

	// Служебные маршруты под подписью
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.APISecret))

		r.Get("/api/stats", StatsHandler)
		r.Get("/api/export/routes.xlsx", ExportRoutesHandler)
		r.Get("/api/route/{id}/qr", routeQRHandler(deps.Config))
	})
}
