package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Logs           *handlers.LogsHandler
	Config         *handlers.ConfigHandler
	Uploads        *handlers.UploadsHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadsDir     string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireAuth := cfg.AuthMiddleware.Handle()
	requireAdmin := cfg.AuthMiddleware.Handle(domain.RoleAdmin)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/ping", cfg.Health.Ping)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/login/google", cfg.Auth.GoogleLogin)
	authGroup.Get("/logout", requireAuth, cfg.Auth.Logout)
	authGroup.Get("/me", requireAuth, cfg.Auth.Me)

	users := api.Group("/users")
	users.Get("/", requireAdmin, cfg.Users.List)
	users.Post("/", requireAdmin, cfg.Users.Create)
	users.Get("/utils/generatePassword", requireAdmin, cfg.Users.GeneratePassword)
	users.Get("/stats/authTypes", requireAdmin, cfg.Users.AuthTypeStats)
	users.Delete("/delete/account", requireAuth, cfg.Users.DeleteAccount)
	users.Put("/:id/password", requireAuth, cfg.Users.UpdatePassword)
	users.Put("/:id", requireAuth, cfg.Users.Update)
	users.Delete("/:id", requireAdmin, cfg.Users.Delete)

	logs := api.Group("/logs", requireAdmin)
	logs.Get("/", cfg.Logs.List)
	logs.Get("/log-levels", cfg.Logs.Levels)
	logs.Delete("/:id", cfg.Logs.Delete)
	logs.Delete("/", cfg.Logs.DeleteAll)

	configGroup := api.Group("/config")
	configGroup.Get("/", cfg.Config.Get)
	configGroup.Put("/", requireAdmin, cfg.Config.Update)

	api.Post("/uploads/avatar/:id", requireAuth, cfg.Uploads.UpdateAvatar)
	app.Static("/uploads", cfg.UploadsDir)

	app.Use("/ws", cfg.WS.Upgrade)
	app.Get("/ws", cfg.WS.Serve())
}
