package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rafid-karim/counselhub/libs/auth"
	"github.com/rafid-karim/counselhub/libs/config"
	"github.com/rafid-karim/counselhub/libs/db"
	"github.com/rafid-karim/counselhub/libs/httpx"
	"github.com/rafid-karim/counselhub/libs/kafkax"
	otelx "github.com/rafid-karim/counselhub/libs/otel"
	"github.com/rafid-karim/counselhub/libs/runtime"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/consumer"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/handlers"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/inbox"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/outbox"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/policy"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/reconcile"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	repo := storage.NewRepository(pool, outboxRepo)

	fallback := policy.Policy{
		HorizonDays:              intConfig("BOOKING_HORIZON_DAYS", 30),
		GranularityMinutes:       intConfig("SLOT_GRANULARITY_MINUTES", 60),
		DefaultMaxSessionsPerDay: intConfig("DEFAULT_MAX_SESSIONS_PER_DAY", 8),
	}
	policyProvider, err := policy.NewPlatformPolicyProvider(logger, fallback, config.String("ADMIN_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("policy provider init failed; using static defaults", "err", err)
		policyProvider = policy.NewStaticProvider(fallback)
	}

	svc := booking.NewService(repo, policyProvider, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	if topic := strings.TrimSpace(config.String("KAFKA_CONSUME_TOPIC", "scheduling.meeting.provisioned.v1")); topic != "" {
		inboxRepo := inbox.NewRepository(pool)
		meetingConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "scheduling-service"),
			Topic:   topic,
		}, consumer.MeetingProvisionedHandler(repo, logger))
		go meetingConsumer.Run(ctx)
	}

	reconciler := reconcile.NewWorker(repo, logger, reconcile.Config{
		Interval: time.Duration(intConfig("RECONCILE_INTERVAL_MINUTES", 15)) * time.Minute,
		Days:     intConfig("RECONCILE_DAYS", 7),
	})
	go reconciler.Run(ctx)

	schedulingHandler := handlers.NewSchedulingHandler(svc, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	apiMux := http.NewServeMux()
	schedulingHandler.Register(apiMux)

	var api http.Handler = apiMux
	if jwtSecret := config.String("AUTH_JWT_SECRET", ""); jwtSecret != "" || config.String("AUTH_JWKS_URL", "") != "" {
		var jwksClient *auth.JWKSClient
		if jwksURL := config.String("AUTH_JWKS_URL", ""); jwksURL != "" {
			jwksClient = auth.NewJWKSClient(jwksURL, time.Duration(intConfig("AUTH_JWKS_TTL_SECONDS", 300))*time.Second)
		}
		api = handlers.RequireAuth(apiMux, jwtSecret, jwksClient)
	} else {
		// Behind the platform gateway the identity headers arrive verified;
		// standalone deployments must configure token verification.
		logger.Warn("token verification disabled; trusting upstream identity headers")
	}
	mux.Handle("/api/", api)

	var rateLimitMW httpx.Middleware
	limitPerMinute := intConfig("RATE_LIMIT_PER_MINUTE", 120)
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       intConfig("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id,Idempotency-Key")),
			AllowCredentials: isTruthy(config.String("CORS_ALLOW_CREDENTIALS", "false")),
			MaxAge:           time.Duration(intConfig("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(intConfig("BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(time.Duration(intConfig("REQUEST_TIMEOUT_SECONDS", 10))*time.Second),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "scheduling")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func intConfig(key string, fallback int) int {
	if v, err := strconv.Atoi(config.String(key, "")); err == nil {
		return v
	}
	return fallback
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
