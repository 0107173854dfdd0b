package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtside/league-system/handlers"
	"github.com/courtside/league-system/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	availabilityHandler *handlers.AvailabilityHandler,
	scheduleHandler *handlers.ScheduleHandler,
	matchHandler *handlers.MatchHandler,
	scorecardHandler *handlers.ScorecardHandler,
	standingsHandler *handlers.StandingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws/tiers/{tierID}", webSocketHandler.ServeWs)

	router.Route("/tiers/{tierID}", func(r chi.Router) {
		// Read-only tier views are public.
		r.Get("/matches", matchHandler.ListTierMatches)
		r.Get("/slates", scheduleHandler.ListSlates)
		r.Get("/schedule/meta", scheduleHandler.GetMeta)
		r.Get("/standings", standingsHandler.GetStandings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))
			r.Post("/schedule", scheduleHandler.ScheduleSeason)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatch)
		r.Get("/scorecard", scorecardHandler.GetLatest)
		r.Get("/calendar", matchHandler.Calendar)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))
			r.Post("/toss", matchHandler.Toss)
			r.Post("/slots", matchHandler.ProposeSlots)
			r.Post("/dispute", matchHandler.Dispute)
			r.Post("/override", matchHandler.ProposeOverride)
			r.Post("/override/confirm", matchHandler.ConfirmOverride)
			r.Post("/scorecard", scorecardHandler.Submit)
			r.Post("/scorecard/approve", scorecardHandler.Approve)
		})
	})

	router.Route("/slots/{slotID}", func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))
		r.Post("/confirm", matchHandler.ConfirmSlot)
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}/availability", availabilityHandler.GetAvailability)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))
			r.Put("/availability", availabilityHandler.SetAvailability)
		})
	})
}
