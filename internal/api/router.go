package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avelks/todo-api-be/internal/api/handlers"
	"github.com/avelks/todo-api-be/internal/auth"
	"github.com/avelks/todo-api-be/internal/services"
	"github.com/avelks/todo-api-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenService,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	todoService services.TodoServiceProvider,
	eventService services.EventServiceProvider,
	allowedOrigin string,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens, eventService)
	todoHandler := handlers.NewTodoHandler(todoService, eventService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub, tokens)

	r.Route("/api/v1", func(r chi.Router) {
		// Websocket connections outlive the request timeout, so the
		// endpoint sits outside the timed subtree.
		r.Get("/ws", wsHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/healthcheck", handlers.HealthCheck)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", userHandler.Register)
				r.Post("/login", userHandler.Login)
			})

			// Protected routes: the token middleware is the single
			// authorization chokepoint.
			r.Group(func(r chi.Router) {
				r.Use(tokens.Middleware())

				r.Route("/todos", func(r chi.Router) {
					r.Get("/", todoHandler.List)
					r.Post("/", todoHandler.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", todoHandler.Get)
						r.Patch("/", todoHandler.Update)
						r.Delete("/", todoHandler.Delete)
					})
				})

				r.Get("/events", eventHandler.GetRecent)
			})
		})
	})

	return r
}
