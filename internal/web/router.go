package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/eguide/guidebook/internal/api"
	"github.com/eguide/guidebook/internal/handlers"
	"github.com/eguide/guidebook/internal/store"
)

// Router assembles the platform process: the account pages plus the
// secret-keyed relay boundary consumed by the bot process.
func Router(apiKey string, users *store.UserStore, links *store.LinkStore, notifications *store.NotificationStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// Account pages
	r.Get("/register", handlers.RegisterForm())
	r.Post("/register", handlers.RegisterSubmit(users))
	r.Get("/login", handlers.LoginForm())
	r.Post("/login", handlers.LoginSubmit(users))
	r.Get("/logout", handlers.Logout())

	r.Group(func(pr chi.Router) {
		pr.Use(handlers.RequireUser(users))
		pr.Get("/", handlers.Profile(users, links))
		pr.Get("/disconnect-telegram", handlers.DisconnectTelegram(users, links))
		pr.Get("/qr/linking.png", handlers.LinkingQR(users))
	})

	// Relay boundary for the bot process
	api.New(apiKey, users, links, notifications).Register(r)

	return r
}

// requestLogger writes one structured access log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
