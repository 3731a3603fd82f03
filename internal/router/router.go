package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-learnhub/internal/config"
	"go-learnhub/internal/handler"
	"go-learnhub/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	User    *handler.UserHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/signup", h.Auth.Signup)
		api.Post("/login", h.Auth.Login)

		api.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)

			protected.Get("/profile", h.Profile.Get)
			protected.Put("/profile", h.Profile.Update)
			protected.Get("/profile/avatar", h.Profile.Avatar)
			protected.Put("/password", h.Auth.ChangePassword)

			protected.Group(func(admin chi.Router) {
				admin.Use(authMiddleware.RequireRoles("admin"))

				admin.Get("/users", h.User.List)
				admin.Get("/users/{id}", h.User.Get)
				admin.Put("/users/{id}/role", h.User.UpdateRole)
				admin.Delete("/users/{id}", h.User.Delete)
			})
		})
	})

	return r
}
