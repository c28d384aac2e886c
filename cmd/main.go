package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/smart-intersection/internal/auth"
	"github.com/ukydev/smart-intersection/internal/config"
	"github.com/ukydev/smart-intersection/internal/db"
	"github.com/ukydev/smart-intersection/internal/handlers"
	"github.com/ukydev/smart-intersection/internal/middleware"
	"github.com/ukydev/smart-intersection/internal/models"
	"github.com/ukydev/smart-intersection/internal/sim"
	"github.com/ukydev/smart-intersection/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	world := sim.NewWorld(sim.Options{
		Policy:            cfg.Policy(),
		Workers:           cfg.Workers,
		SpawnCooldown:     cfg.SpawnCooldown,
		AutoSpawnDuration: cfg.AutoSpawnDuration,
	}, time.Now())

	var runs db.RunCollection
	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Warn("MongoDB unavailable, run summaries will not be persisted")
		} else {
			defer client.Disconnect(context.Background())
			runs = db.NewRunCollection(client, cfg.MongoDB)
			log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
		}
	}

	var sink sim.FrameSink
	if cfg.MQTTBroker != "" {
		pub, err := telemetry.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			log.WithError(err).Warn("MQTT unavailable, frames will not be published")
		} else {
			defer pub.Close()
			sink = pub
			log.WithField("topic", pub.Topic(world.RunID())).Info("Publishing frames")
		}
	}

	if cfg.OperatorPasswordHash == "" {
		log.Warn("OPERATOR_PASSWORD_HASH not set, login is disabled")
	}
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry, auth.Account{
		Username:     cfg.OperatorUsername,
		PasswordHash: cfg.OperatorPasswordHash,
		Role:         models.RoleOperator,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(world, authService, runs, cfg.RateLimit),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runner := &sim.Runner{World: world, Interval: cfg.TickInterval, Sink: sink}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runner.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	finish(world, runs, time.Now())
	return err
}

// newRouter wires the control API. Every route except login and health needs
// a token.
func newRouter(world *sim.World, authService *auth.Service, runs db.RunCollection, rateLimit int) http.Handler {
	authMW := middleware.NewAuthMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService)
	simHandler := handlers.NewSimHandler(world)
	runsHandler := handlers.NewRunsHandler(runs)

	guard := func(action string, h http.HandlerFunc) http.Handler {
		return authMW.RequirePermission(action)(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","run_id":"` + world.RunID() + `"}`))
	})
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/me", authHandler.Me)
	mux.Handle("/api/spawn", guard(models.ActionSpawn, simHandler.Spawn))
	mux.Handle("/api/autospawn", guard(models.ActionSpawn, simHandler.AutoSpawn))
	mux.Handle("/api/vehicles", guard(models.ActionViewVehicles, simHandler.Vehicles))
	mux.Handle("/api/stats", guard(models.ActionViewStats, simHandler.Stats))
	mux.Handle("/api/runs", guard(models.ActionViewRuns, runsHandler.List))

	limiter := middleware.NewRateLimitMiddleware()
	return middleware.Logging(limiter.RateLimit(rateLimit, time.Minute)(authMW.Authenticate(mux)))
}

// finish logs the run statistics and stores them when persistence is on.
func finish(world *sim.World, runs db.RunCollection, now time.Time) models.RunSummary {
	s := world.Summary(now)
	log.WithFields(log.Fields{
		"run_id":        s.RunID,
		"total_spawned": s.TotalSpawned,
		"finished":      s.Finished,
		"max_travel":    s.MaxTravel,
		"min_travel":    s.MinTravel,
		"max_speed":     s.MaxSpeed,
		"min_speed":     s.MinSpeed,
		"close_calls":   s.CloseCalls,
	}).Info("Simulation statistics")

	if runs == nil {
		return s
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runs.InsertRun(ctx, s); err != nil {
		log.WithError(err).Error("Failed to persist run summary")
	}
	return s
}
