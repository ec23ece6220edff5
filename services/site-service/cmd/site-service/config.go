package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/websitekoning/koning-api/libs/config"
	"github.com/websitekoning/koning-api/libs/email"
	"github.com/websitekoning/koning-api/services/site-service/internal/content"
	"github.com/websitekoning/koning-api/services/site-service/internal/handlers"
	"github.com/websitekoning/koning-api/services/site-service/internal/notify"
	"github.com/websitekoning/koning-api/services/site-service/internal/policy"
)

const (
	notifyLog   = "log"
	notifySMTP  = "smtp"
	notifyKafka = "kafka"
)

type Config struct {
	Service       string `env:"SERVICE_NAME" envDefault:"site-service"`
	GRPCPort      string `env:"GRPC_PORT"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DatabaseName  string `env:"DATABASE_NAME"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	RedisAddr          string   `env:"REDIS_ADDR"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	NotifyMode       string   `env:"NOTIFY_MODE" envDefault:"log"`
	AdminRecipients  []string `env:"NOTIFY_ADMIN_RECIPIENTS" envSeparator:","`
	KafkaBrokers     string   `env:"KAFKA_BROKERS"`
	KafkaNotifyTopic string   `env:"KAFKA_NOTIFY_TOPIC" envDefault:"site.notifications"`

	SMTP   email.SMTPConfig
	Policy policy.Config
	Notify notify.Config
	Cache  content.CacheConfig
	Admin  handlers.AdminConfig
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	cfg.NotifyMode = strings.ToLower(strings.TrimSpace(cfg.NotifyMode))
	switch cfg.NotifyMode {
	case notifyLog, notifySMTP:
	case notifyKafka:
		if len(config.List(cfg.KafkaBrokers)) == 0 {
			return Config{}, errors.New("NOTIFY_MODE=kafka requires KAFKA_BROKERS")
		}
	default:
		return Config{}, fmt.Errorf("NOTIFY_MODE must be log, smtp or kafka (got %q)", cfg.NotifyMode)
	}
	if cfg.GRPCPort != "" {
		if _, err := config.Port("GRPC_PORT", ""); err != nil {
			return Config{}, err
		}
	}
	cfg.AdminRecipients = config.List(strings.Join(cfg.AdminRecipients, ","))
	return cfg, nil
}
