package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillproof/internal/assessment/grader"
	assessmenthandler "skillproof/internal/assessment/handler"
	assessmentservice "skillproof/internal/assessment/service"
	assessmentstore "skillproof/internal/assessment/store"
	"skillproof/internal/billing"
	billinghandler "skillproof/internal/billing/handler"
	credentialhandler "skillproof/internal/credential/handler"
	credentialservice "skillproof/internal/credential/service"
	credentialstore "skillproof/internal/credential/store"
	"skillproof/internal/identity"
	"skillproof/internal/ledger"
	"skillproof/internal/ledger/reconciler"
	"skillproof/internal/ledger/tracer"
	"skillproof/internal/platform/config"
	"skillproof/internal/platform/database"
	"skillproof/internal/platform/health"
	"skillproof/internal/platform/kafka/producer"
	"skillproof/internal/platform/logger"
	platformredis "skillproof/internal/platform/redis"
	"skillproof/internal/seeder"
	"skillproof/internal/tokens"
	httptransport "skillproof/internal/transport/http"
	"skillproof/pkg/platform/audit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage. Absent configuration falls back to memory stores so the
	// service runs locally without infrastructure.
	pool, err := database.New(database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var (
		credStore     credentialstore.Store
		quizStore     assessmentstore.QuizStore
		attemptStore  assessmentstore.AttemptStore
		identityStore identity.Store
		journal       ledger.Journal
	)
	if pool != nil {
		defer pool.Close()
		credStore = credentialstore.NewPostgres(pool.DB())
		pgAssessments := assessmentstore.NewPostgres(pool.DB())
		quizStore = pgAssessments
		attemptStore = pgAssessments
		identityStore = identity.NewPostgres(pool.DB())
		journal = ledger.NewPostgresJournal(pool.DB())
	} else {
		log.Warn("no database configured, using in-memory stores")
		credStore = credentialstore.NewMemoryStore()
		memAssessments := assessmentstore.NewMemoryStore()
		quizStore = memAssessments
		attemptStore = memAssessments
		memIdentities := identity.NewMemoryStore()
		identityStore = memIdentities
		journal = ledger.NewMemoryJournal()

		if err := seeder.New(memIdentities, memAssessments, log).SeedAll(ctx); err != nil {
			log.Error("demo data seeding failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisAddr)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		platformredis.CollectPoolStats(redisClient)
	}

	// Audit pipeline.
	var publisher audit.Publisher = audit.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		producerCfg := producer.DefaultConfig()
		producerCfg.Brokers = cfg.KafkaBrokers
		prod, err := producer.New(producerCfg, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer prod.Close()
		publisher = audit.NewKafkaPublisher(prod, cfg.AuditTopic, log)
	} else {
		log.Warn("no kafka brokers configured, audit events are dropped")
	}

	// Ledger client.
	if cfg.LedgerURL == "" {
		log.Error("LEDGER_RPC_URL is required")
		os.Exit(1)
	}
	ledgerClient := ledger.New(cfg.LedgerURL, cfg.LedgerAPIKey,
		ledger.WithHTTPClient(&http.Client{Timeout: cfg.LedgerRequestTimeout}),
		ledger.WithReceiptTimeout(cfg.ReceiptTimeout),
		ledger.WithTracer(tracer.NewOTel()),
		ledger.WithLogger(log),
	)

	// Identity gate.
	gateOpts := []identity.Option{
		identity.WithLedger(ledgerClient),
		identity.WithLogger(log),
	}
	if redisClient != nil {
		gateOpts = append(gateOpts, identity.WithCache(redisClient, cfg.DIDCacheTTL))
	}
	gate := identity.NewGate(identityStore, gateOpts...)

	// Grading collaborator.
	var quizGrader grader.Grader = grader.NewHTTP(cfg.GraderURL, cfg.GraderTimeout)
	if cfg.DegradedGrader {
		log.Warn("degraded grading fallback enabled")
		quizGrader = grader.NewDegraded(quizGrader, log)
	}

	// Domain services.
	credentials := credentialservice.New(credStore, gate, ledgerClient,
		credentialservice.WithHashReader(ledgerClient),
		credentialservice.WithJournal(journal),
		credentialservice.WithAudit(publisher),
		credentialservice.WithLogger(log),
		credentialservice.WithMetadataBaseURI(cfg.MetadataBaseURI+"/credentials"),
	)
	assessments := assessmentservice.New(quizStore, attemptStore, ledgerClient, gate, quizGrader,
		assessmentservice.WithJournal(journal),
		assessmentservice.WithAudit(publisher),
		assessmentservice.WithLogger(log),
		assessmentservice.WithMetadataBaseURI(cfg.MetadataBaseURI+"/attempts"),
	)
	billingService := billing.New(ledgerClient, gate, log)

	tokenService := tokens.New(cfg.JWTSigningKey, "skillproof", cfg.TokenTTL)

	// Operational surface.
	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(checkCtx).Err()
		})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Credentials: credentialhandler.New(credentials, log),
		Assessments: assessmenthandler.New(assessments, log),
		Billing:     billinghandler.New(billingService, log),
		Health:      healthHandler,
		Tokens:      tokenService,
		Logger:      log,
	})

	// Background reconciliation of indeterminate anchors.
	worker := reconciler.New(journal, ledgerClient, publisher, log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("reconciler stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
