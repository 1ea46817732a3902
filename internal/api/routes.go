package api

import (
	"time"

	"github.com/go-chi/chi/v5"
)

// Routes assembles the full router. Streaming endpoints are registered
// outside the timeout group so long-lived connections are not cut off.
func (h *Handler) Routes(m *Middleware) chi.Router {
	r := chi.NewRouter()

	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.CORS(h.cfg.Security.CORSAllowedOrigins))
	r.Use(m.RateLimit(h.cfg.Security.RateLimitRPM))

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/ping", h.Ping)

	r.Route("/v1", func(r chi.Router) {
		// Streaming endpoints: no timeout, no compression.
		r.Get("/stream", h.sse.HandleSSE)
		r.Get("/ws", h.hub.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(m.Compress)
			r.Use(m.Timeout(30 * time.Second))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", h.Login)
				r.Post("/register", h.Register)
				r.Post("/logout", h.Logout)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/news", func(r chi.Router) {
				r.Get("/", h.ListNews)
				r.Post("/", h.CreateNews)
				r.Delete("/{id}", h.DeleteNews)
			})

			r.Get("/products", h.ListProducts)
			r.Post("/orders", h.CreateOrder)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.ListPosts)
				r.Post("/", h.CreatePost)
				r.Delete("/{id}", h.DeletePost)
				r.Post("/{id}/like", h.ToggleLike)
				r.Get("/{id}/comments", h.ListComments)
				r.Post("/{id}/comments", h.AddComment)
			})

			r.Delete("/comments/{id}", h.DeleteComment)

			r.Route("/affairs", func(r chi.Router) {
				r.Get("/", h.ListAffairs)
				r.Post("/", h.CreateAffair)
				r.Patch("/{id}/status", h.UpdateAffairStatus)
			})
		})
	})

	return r
}
