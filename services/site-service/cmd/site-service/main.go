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
	"github.com/websitekoning/koning-api/libs/grpcx"
	"github.com/websitekoning/koning-api/libs/httpx"
	"github.com/websitekoning/koning-api/libs/kafkax"
	otelx "github.com/websitekoning/koning-api/libs/otel"
	"github.com/websitekoning/koning-api/libs/requestid"
	"github.com/websitekoning/koning-api/libs/runtime"
	"github.com/websitekoning/koning-api/services/site-service/internal/admission"
	"github.com/websitekoning/koning-api/services/site-service/internal/booking"
	"github.com/websitekoning/koning-api/services/site-service/internal/content"
	"github.com/websitekoning/koning-api/services/site-service/internal/handlers"
	"github.com/websitekoning/koning-api/services/site-service/internal/notify"
	"github.com/websitekoning/koning-api/services/site-service/internal/policy"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage/nostore"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage/postgres"
	"github.com/websitekoning/koning-api/services/site-service/migrations"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	port, err := config.Port("PORT", "8000")
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

	p, err := policy.New(cfg.Policy)
	if err != nil {
		panic(err)
	}

	var checks []runtime.ReadyCheck
	stores := nostore.New().Stores()
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; submissions are acknowledged but not stored")
	} else {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		if cfg.RunMigrations {
			migrate(ctx, pool, logger)
		}
		stores = postgres.NewStores(pool)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}

	sender, closeSender := newSender(cfg, logger)
	defer closeSender()
	if cfg.NotifyMode == notifyKafka {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}
	dispatcher := notify.NewDispatcher(sender, logger, cfg.Notify)

	contentSvc := content.NewService(stores.Content, logger, cfg.Cache)
	if _, err := contentSvc.Seed(ctx); err != nil {
		logger.Warn("content seed failed", "err", err)
	}

	bookingSvc := booking.NewService(admission.New(p), stores.Appointments, dispatcher, logger, cfg.AdminRecipients)

	limiter, limiterCheck := newRateLimiter(cfg, logger)
	if limiterCheck != nil {
		checks = append(checks, *limiterCheck)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	routes(cfg, p, stores, bookingSvc, contentSvc, dispatcher, logger).Register(mux)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", requestid.Header},
			ExposedHeaders:   []string{requestid.Header, "Retry-After", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}),
		httpx.ForMethods(limiter, http.MethodPost),
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(15*time.Second),
	)
	handler = otelhttp.NewHandler(handler, "site")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.GRPCPort != "" {
		hs := grpcx.NewHealthServer(logger, cfg.Service, 10*time.Second, checks...)
		go func() {
			if err := hs.Serve(ctx, ":"+cfg.GRPCPort); err != nil {
				logger.Error("grpc health server error", "err", err)
			}
		}()
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "stored", stores.Appointments.Durable(), "notify", cfg.NotifyMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	// HTTP first so no new bookings enqueue while the dispatcher drains.
	_ = runtime.Shutdown(logger, 10*time.Second,
		runtime.ShutdownStep{Name: "http", Stop: srv.Shutdown},
		runtime.ShutdownStep{Name: "notifications", Stop: dispatcher.Close},
	)
	logger.Info("http server stopped")
}

func routes(cfg Config, p *policy.Policy, stores storage.Stores, bookingSvc *booking.Service, contentSvc *content.Service, dispatcher *notify.Dispatcher, logger *slog.Logger) handlers.Routes {
	return handlers.Routes{
		Status:       handlers.NewStatusHandler(stores.Status, cfg.DatabaseURL != "", cfg.DatabaseName != ""),
		Appointments: handlers.NewAppointmentHandler(bookingSvc, p, logger),
		Leads:        handlers.NewLeadHandler(stores.Leads, dispatcher, cfg.AdminRecipients, logger),
		Content:      handlers.NewContentHandler(contentSvc, logger),
		Admin:        handlers.NewAdminHandler(cfg.Admin, logger),
	}
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

func newSender(cfg Config, logger *slog.Logger) (notify.Sender, func()) {
	switch cfg.NotifyMode {
	case notifySMTP:
		return notify.NewEmailSender(email.NewSMTPSender(cfg.SMTP)), func() {}
	case notifyKafka:
		ks := notify.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaNotifyTopic)
		return ks, func() {
			if err := ks.Close(); err != nil {
				logger.Warn("kafka writer close failed", "err", err)
			}
		}
	default:
		return notify.NewLogSender(logger), func() {}
	}
}

// newRateLimiter shares counters through Redis when REDIS_ADDR is set and
// keeps them in memory otherwise.
func newRateLimiter(cfg Config, logger *slog.Logger) (httpx.Middleware, *runtime.ReadyCheck) {
	if cfg.RedisAddr == "" {
		return httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware(), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	rl := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "site:rl")
	return rl.Middleware(logger, true), &runtime.ReadyCheck{Name: "redis", Check: rl.Ping}
}
