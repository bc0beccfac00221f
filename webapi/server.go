package webapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"akari/config"
	"akari/database"
	"akari/metrics"
	"akari/service"
)

// Server hosts the portal-facing HTTP API
type Server struct {
	httpServer *http.Server
	db         *database.DB
}

// NewServer creates a new Server instance
func NewServer(
	cfg *config.Config,
	db *database.DB,
	userService service.UserService,
	pointsService service.PointsService,
	predictionService service.PredictionService,
	rewardService service.RewardService,
	leaderboardService service.LeaderboardService,
	campaignService service.CampaignService,
) *Server {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handleHealthz())
	r.Get("/readyz", handleReadyz(db))

	// Metrics endpoint for Prometheus scraping
	r.Handle("/metrics", promhttp.Handler())

	userHandler := newUserHandler(userService, pointsService)
	predictionHandler := newPredictionHandler(predictionService)
	rewardHandler := newRewardHandler(rewardService, userService)
	campaignHandler := newCampaignHandler(campaignService, pointsService, leaderboardService)

	r.Route("/api/v1", func(r chi.Router) {
		// Caller-scoped routes require the portal identity header
		r.Group(func(r chi.Router) {
			r.Use(callerMiddleware)

			r.Route("/users", func(r chi.Router) {
				r.Post("/register", userHandler.handleRegister)
				r.Get("/me", userHandler.handleGetMe)
				r.Get("/me/history", userHandler.handleGetHistory)
				r.Put("/me/wallet", userHandler.handleSetWallet)
			})

			r.Route("/predictions", func(r chi.Router) {
				r.Get("/", predictionHandler.handleList)
				r.Post("/", predictionHandler.handleCreate)
				r.Get("/{id}", predictionHandler.handleGet)
				r.Post("/{id}/bets", predictionHandler.handlePlaceBet)
				r.Post("/{id}/resolve", predictionHandler.handleResolve)
			})

			r.Route("/rewards", func(r chi.Router) {
				r.Get("/", rewardHandler.handleList)
				r.Post("/{id}/claim", rewardHandler.handleClaim)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", campaignHandler.handleList)
				r.Post("/", campaignHandler.handleCreate)
				r.Get("/{id}", campaignHandler.handleGet)
				r.Post("/{id}/activate", campaignHandler.handleActivate)
				r.Post("/{id}/close", campaignHandler.handleClose)
				r.Post("/{id}/tasks/{taskID}/complete", campaignHandler.handleCompleteTask)
				r.Get("/{id}/leaderboard", campaignHandler.handleLeaderboard)
			})

			r.Get("/leaderboard", campaignHandler.handleGlobalLeaderboard)
			r.Get("/stats/burned", rewardHandler.handleTotalBurned)
		})

		// Administrative routes use a static API key instead
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware(cfg.Server.APIKey))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", userHandler.handleListUsers)
				r.Post("/rewards", rewardHandler.handleGrantWeekly)
				r.Get("/rewards/payout-queue", rewardHandler.handlePayoutQueue)
				r.Post("/rewards/{id}/paid", rewardHandler.handleMarkPaid)
				r.Post("/points/award", userHandler.handleAdminAward)
			})
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db: db,
	}
}

// Start begins serving requests and blocks until the listener fails
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "ok"})
	}
}

func handleReadyz(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "ready"})
	}
}
