package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/websitekoning/koning-api/libs/config"
	"github.com/websitekoning/koning-api/libs/db"
	"github.com/websitekoning/koning-api/libs/email"
	"github.com/websitekoning/koning-api/libs/httpx"
	"github.com/websitekoning/koning-api/libs/kafkax"
	otelx "github.com/websitekoning/koning-api/libs/otel"
	"github.com/websitekoning/koning-api/libs/runtime"
	"github.com/websitekoning/koning-api/services/notification-service/internal/consumer"
	"github.com/websitekoning/koning-api/services/notification-service/internal/dedupe"
	"github.com/websitekoning/koning-api/services/notification-service/internal/delivery"
	"github.com/websitekoning/koning-api/services/notification-service/internal/storage"
	"github.com/websitekoning/koning-api/services/notification-service/migrations"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.Service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelCfg, err := otelx.ConfigFromEnv(cfg.Service)
	if err != nil {
		panic(err)
	}
	otelShutdown, err := otelx.Setup(ctx, otelCfg)
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	checks := []runtime.ReadyCheck{
		{Name: "kafka", Check: kafkax.ReadyCheck(cfg.Kafka.Brokers)},
	}

	var recorder delivery.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		if cfg.RunMigrations {
			migrate(ctx, pool, logger)
		}
		recorder = storage.NewRepository(pool)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	} else {
		logger.Warn("DATABASE_URL not set; deliveries are logged but not recorded")
	}

	var seen dedupe.Deduper
	if cfg.RedisAddr != "" {
		rd := dedupe.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "notify:seen", cfg.DedupeTTL)
		seen = rd
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: rd.Ping})
	} else {
		seen = dedupe.NewMemory(cfg.DedupeSize, cfg.DedupeTTL)
	}

	handler := delivery.NewHandler(email.NewSMTPSender(cfg.SMTP), recorder, logger, cfg.Delivery)
	eventConsumer := consumer.New(logger, seen, cfg.Kafka, handler.Handle)
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(checks...)
	h := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	h = otelhttp.NewHandler(h, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "topic", cfg.Kafka.Topic)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	_ = runtime.Shutdown(logger, 10*time.Second,
		runtime.ShutdownStep{Name: "http", Stop: srv.Shutdown},
	)
	logger.Info("http server stopped")
}

func migrate(ctx context.Context, pool *db.Pool, logger *slog.Logger) {
	m, err := db.NewMigrator(pool, migrations.FS)
	if err != nil {
		logger.Error("migrations unavailable", "err", err)
		panic(err)
	}
	defer func() { _ = m.Close() }()
	n, err := m.Up(ctx)
	if err != nil {
		logger.Error("migrations failed", "err", err)
		panic(err)
	}
	logger.Info("migrations applied", "count", n)
}
