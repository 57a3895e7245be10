package api

import (
	"context"
	"net/http"
	"time"

	"github.com/confspotter/confspotter-be/internal/api/handlers"
	"github.com/confspotter/confspotter-be/internal/auth"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/confspotter/confspotter-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	DB              Pinger
	Hub             *websocket.Hub
	Tokens          *auth.Manager
	Users           services.UserServiceProvider
	Conferences     services.ConferenceServiceProvider
	Papers          services.PaperServiceProvider
	Favorites       services.FavoriteServiceProvider
	Recommendations services.RecommendationServiceProvider
	Events          services.EventServiceProvider

	AllowedOrigins     []string
	DeadlineWindowDays int
	SecureCookies      bool
}

// NewRouter creates and configures a new Chi router. Every route is served
// both at the root and under /api.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	// Initialize handlers
	conferenceHandler := handlers.NewConferenceHandler(deps.Conferences)
	paperHandler := handlers.NewPaperHandler(deps.Papers)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Events, deps.Tokens, deps.SecureCookies)
	favoriteHandler := handlers.NewFavoriteHandler(deps.Favorites, deps.Recommendations, deps.DeadlineWindowDays)
	eventHandler := handlers.NewEventHandler(deps.Events)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Events, deps.AllowedOrigins)

	requireAuth := deps.Tokens.Middleware(handlers.WriteError)

	routes := func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"ConfSpotter API is running!"}` + "\n"))
		})
		r.Get("/test-db", testDB(deps.DB))

		r.Route("/conferences", func(r chi.Router) {
			r.Get("/", conferenceHandler.GetAll)
			r.Get("/{id}", conferenceHandler.Get)
			r.With(requireAuth).Post("/", conferenceHandler.Create)
		})

		r.Route("/papers", func(r chi.Router) {
			r.Get("/", paperHandler.GetAll)
			r.Get("/{id}", paperHandler.Get)
			r.Post("/", paperHandler.Create)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/verify-login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", userHandler.List)
				r.Get("/me", userHandler.GetMe)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.Get)
					r.Put("/", userHandler.Update)
					r.Delete("/", userHandler.Delete)
					r.Put("/password", userHandler.ChangePassword)

					r.Get("/favorites", favoriteHandler.List)
					r.Post("/favorites", favoriteHandler.Add)
					r.Post("/favorites/{cid}", favoriteHandler.Add)
					r.Delete("/favorites/{cid}", favoriteHandler.Remove)

					r.Get("/recommendations", favoriteHandler.Recommendations)
					r.Get("/deadlines", favoriteHandler.Deadlines)
				})
			})
		})

		r.With(requireAuth).Get("/events", eventHandler.GetRecent)
		r.With(requireAuth).Get("/ws", wsHandler.Serve)
	}

	routes(r)
	r.Route("/api", routes)

	return r
}

func testDB(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Error().Err(err).Msg("Database health check failed")
			handlers.WriteError(w, http.StatusInternalServerError, "Database connection failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Database connection successful!"}` + "\n"))
	}
}

// requestLogger logs one line per request through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Handled request")
		}()
		next.ServeHTTP(ww, r)
	})
}
