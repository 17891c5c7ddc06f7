package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-session/internal/config"
	"storefront-session/internal/handler"
	"storefront-session/internal/middleware"
	"storefront-session/internal/model"
	"storefront-session/internal/websocket"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Session *handler.SessionHandler
	User    *handler.UserHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM).Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWS(hub, w, req)
		})
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/register", h.Auth.Register)
			auth.Get("/verify", h.Auth.Verify)
			auth.Post("/logout", h.Auth.Logout)
			auth.Post("/password/reset-request", h.Auth.RequestPasswordReset)
			auth.Post("/password/reset-confirm", h.Auth.ConfirmPasswordReset)

			auth.Group(func(protected chi.Router) {
				protected.Use(authMiddleware.RequireAuth)
				protected.Get("/me", h.Auth.Me)
				protected.Post("/password/change", h.Auth.ChangePassword)
				protected.Put("/profile", h.Auth.UpdateProfile)
			})
		})

		api.Route("/session", func(sess chi.Router) {
			sess.Get("/", h.Session.Status)
			sess.Get("/account", h.Session.Account)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)
			admin.Use(authMiddleware.RequireRoles(model.RoleAdmin))
			admin.Get("/users/{id}", h.User.GetByID)
		})
	})

	return r
}
