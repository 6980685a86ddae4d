package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"course-manager/internal/config"
	"course-manager/internal/handler"
	"course-manager/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Course *handler.CourseHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, cfg.TrustProxy)
	authorize := authMiddleware.Authorize

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", h.Auth.Register)
			a.Post("/login", h.Auth.Login)
			a.Post("/refresh-token", h.Auth.Refresh)

			a.Group(func(session chi.Router) {
				session.Use(authMiddleware.RequireAuth)
				session.With(authorize(middleware.OpAuthUpdateRole)).Patch("/update-role", h.Auth.UpdateRole)
				session.Post("/logout", h.Auth.Logout)
				session.Get("/me", h.Auth.Me)
			})
		})

		api.Route("/courses", func(c chi.Router) {
			c.Use(authMiddleware.RequireAuth)
			c.With(authorize(middleware.OpCourseList)).Get("/", h.Course.List)
			c.With(authorize(middleware.OpCourseCreate)).Post("/", h.Course.Create)
			c.With(authorize(middleware.OpCourseGet)).Get("/{id}", h.Course.Get)
			c.With(authorize(middleware.OpCourseUpdate)).Patch("/{id}", h.Course.Update)
			c.With(authorize(middleware.OpCourseDelete)).Delete("/{id}", h.Course.Delete)
		})

		api.Route("/users", func(u chi.Router) {
			u.Use(authMiddleware.RequireAuth)
			u.With(authorize(middleware.OpUserSelfGet)).Get("/me", h.User.GetSelf)
			u.With(authorize(middleware.OpUserSelfUpdate)).Patch("/me", h.User.UpdateSelf)
			u.With(authorize(middleware.OpUserSelfDelete)).Delete("/me", h.User.DeleteSelf)
			u.With(authorize(middleware.OpUserList)).Get("/", h.User.List)
			u.With(authorize(middleware.OpUserGet)).Get("/{id}", h.User.Get)
			u.With(authorize(middleware.OpUserUpdate)).Patch("/{id}", h.User.Update)
			u.With(authorize(middleware.OpUserDelete)).Delete("/{id}", h.User.Delete)
		})
	})

	return r
}
