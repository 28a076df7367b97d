package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/tournament-console/docs"
	"github.com/Dosada05/tournament-console/handlers"
	"github.com/Dosada05/tournament-console/metrics"
	"github.com/Dosada05/tournament-console/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers groups every HTTP handler the console serves.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Session   *handlers.SessionHandler
	Fixtures  *handlers.FixturesHandler
	Matches   *handlers.MatchHandler
	Courts    *handlers.CourtHandler
	Standings *handlers.StandingsHandler
	Knockout  *handlers.KnockoutHandler
	Players   *handlers.PlayerHandler
	Pools     *handlers.PoolHandler
	Exports   *handlers.ExportHandler
	WebSocket *handlers.WebSocketHandler
}

// Options carries the cross-cutting pieces the router wires around handlers.
type Options struct {
	Tokens         middleware.TokenParser
	Sessions       middleware.SessionLookup
	Metrics        *metrics.Recorder
	Logger         *slog.Logger
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.Tokens, opts.Sessions, opts.Logger)

	router.With(authenticate).Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", h.Session.Current)
				r.Put("/tournament", h.Session.SelectTournament)
				r.Delete("/tournament", h.Session.ClearTournament)
			})

			r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
				r.Get("/fixtures", h.Fixtures.List)

				r.Route("/matches/{matchID}", func(r chi.Router) {
					r.Post("/score", h.Matches.UpdateScore)
					r.Post("/status", h.Matches.UpdateStatus)
				})

				r.Route("/courts", func(r chi.Router) {
					r.Post("/assignments", h.Courts.Assign)
					r.Post("/{court}/reorder", h.Courts.Reorder)
				})

				r.Route("/standings", func(r chi.Router) {
					r.Get("/", h.Standings.Get)
					r.Get("/all", h.Standings.All)
				})

				r.Route("/knockout", func(r chi.Router) {
					r.Get("/", h.Knockout.Check)
					r.Post("/", h.Knockout.Create)
					r.Delete("/", h.Knockout.Delete)
					r.Post("/from-matches", h.Knockout.CreateFromMatches)
					r.Get("/bracket", h.Knockout.Bracket)
				})

				r.Route("/players", func(r chi.Router) {
					r.Get("/", h.Players.List)
					r.Post("/", h.Players.Create)
					r.Put("/{playerID}", h.Players.Update)
					r.Delete("/{playerID}", h.Players.Delete)
					r.Post("/{playerID}/check-in", h.Players.CheckIn)
				})

				r.Route("/pools", func(r chi.Router) {
					r.Get("/", h.Pools.List)
					r.Post("/", h.Pools.Create)
					r.Delete("/{poolID}", h.Pools.Delete)
					r.Post("/{poolID}/teams", h.Pools.AddTeam)
				})

				r.Route("/exports", func(r chi.Router) {
					r.Get("/", h.Exports.List)
					r.Post("/{kind}", h.Exports.Create)
				})
			})
		})
	})
}
