package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

// RouterConfig carries the transport concerns that sit around the handlers.
type RouterConfig struct {
	ServiceName        string
	CORSAllowedOrigins []string
	PredictionLimiter  *UserRateLimiter
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "bolao-sca"
	}

	requireAuth := func(next http.Handler) http.Handler {
		return RequireAuth(verifier, next)
	}
	limitPredictions := func(next http.Handler) http.Handler {
		return RateLimit(cfg.PredictionLimiter, next)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(func(next http.Handler) http.Handler { return RequestLogging(logger, next) })
	r.Use(func(next http.Handler) http.Handler { return CORS(cfg.CORSAllowedOrigins, next) })
	r.Use(func(next http.Handler) http.Handler { return recoverPanic(logger, next) })

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, errMethodNotAllowed)
	})

	r.Get("/healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/rounds", handler.ListRounds)
		r.Get("/rounds/current", handler.GetCurrentRound)
		r.Get("/rounds/{roundID}", handler.GetRound)
		r.Get("/rounds/{roundID}/lock", handler.GetRoundLock)
		r.Get("/rounds/{roundID}/ranking", handler.GetRoundRanking)
		r.Get("/matches/{matchID}/lock", handler.GetMatchLock)
		r.Get("/rankings", handler.GetGlobalRanking)
		r.Get("/rankings/export", handler.ExportRanking)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", handler.GetMe)
			r.Get("/rounds/{roundID}/predictions/me", handler.ListMyRoundPredictions)
			r.With(limitPredictions).Put("/matches/{matchID}/prediction", handler.SubmitPrediction)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/pools", handler.CreatePool)
			r.Post("/championships", handler.CreateChampionship)
			r.Post("/rounds", handler.CreateRound)
			r.Post("/rounds/{roundID}/matches", handler.CreateMatch)
			r.Post("/rounds/{roundID}/finalize", handler.FinalizeRound)
			r.Post("/rounds/{roundID}/rescore", handler.RescoreRound)
			r.Post("/matches/{matchID}/finalize", handler.FinalizeMatch)
			r.Put("/participants/{userID}", handler.UpsertParticipant)
		})
	})

	return RequestTracing(cfg.ServiceName, r)
}
