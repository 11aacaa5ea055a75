package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idverify/internal/age"
	"idverify/internal/apikey"
	"idverify/internal/audit"
	decisionmetrics "idverify/internal/decision/metrics"
	"idverify/internal/platform/config"
	"idverify/internal/platform/httpserver"
	"idverify/internal/platform/logger"
	platformredis "idverify/internal/platform/redis"
	"idverify/internal/policy"
	policymetrics "idverify/internal/policy/metrics"
	"idverify/internal/session"
	sessionmetrics "idverify/internal/session/metrics"
	"idverify/internal/token"
	httptransport "idverify/internal/transport/http"
	"idverify/internal/verification"
	"idverify/internal/verification/vision"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs sessions and settings when configured; otherwise the
	// process runs self-contained on memory and flat files.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	var sessionStore session.Store = session.NewInMemoryStore()
	var policyStore policy.Store = policy.NewFileStore(cfg.SettingsPath)
	if redisClient != nil {
		sessionStore = session.NewRedisStore(redisClient.Client)
		policyStore = policy.NewRedisStore(redisClient.Client)
	}

	sessions := session.NewService(sessionStore, log, sessionmetrics.New(), cfg.SessionTTL, cfg.BaseURL)
	settings := policy.NewService(policyStore, log, policymetrics.New())

	keys := apikey.NewService(apikey.NewFileStore(cfg.APIKeyPath), log)
	adminTokens := token.NewService(cfg.JWTSigningKey)

	visionClient := vision.NewClient(cfg.Vision.BaseURL, cfg.Vision.APIKey, cfg.Vision.Model)
	verifier := verification.NewService(
		visionClient,
		visionClient,
		visionClient,
		settings,
		sessions,
		age.NewCalculator(cfg.MajorityAge),
		log,
		decisionmetrics.New(),
		cfg.VerifyTimeout,
	)

	recorder := audit.NewRecorder(cfg.AuditBuffer, log)
	auditStore, auditRelay, err := buildAuditSinks(ctx, cfg, log)
	if err != nil {
		log.Error("audit setup failed", "error", err)
		os.Exit(1)
	}
	if auditRelay != nil {
		defer auditRelay.Close()
	}
	go func() {
		if err := audit.NewWorker(auditStore, auditRelay, recorder.Events(), log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	go session.NewSweeper(sessions, log, cfg.SweepInterval).Run(ctx)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Sessions:     sessions,
		Settings:     settings,
		Verification: verifier,
		APIKeys:      keys,
		KeyAuth:      keys,
		AdminAuth:    adminTokens,
		Recorder:     recorder,
		HealthCheck:  healthCheck(redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildAuditSinks selects the audit store and optional Kafka relay from
// configuration.
func buildAuditSinks(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Store, *audit.Relay, error) {
	var store audit.Store = audit.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		db, err := audit.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		pg := audit.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		store = pg
		log.Info("audit events persisted to postgres")
	}

	var relay *audit.Relay
	if len(cfg.Kafka.Brokers) > 0 {
		var err error
		relay, err = audit.NewRelay(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, nil, err
		}
		log.Info("audit events relayed to kafka", "topic", cfg.Kafka.Topic)
	}
	return store, relay, nil
}

// healthCheck reports degraded when a configured backend is unreachable.
func healthCheck(redisClient *platformredis.Client) func(r *http.Request) error {
	if redisClient == nil {
		return nil
	}
	return func(r *http.Request) error {
		return redisClient.Health(r.Context())
	}
}
