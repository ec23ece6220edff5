package main

import (
	"errors"
	"time"

	"github.com/websitekoning/koning-api/libs/config"
	"github.com/websitekoning/koning-api/libs/email"
	"github.com/websitekoning/koning-api/services/notification-service/internal/consumer"
	"github.com/websitekoning/koning-api/services/notification-service/internal/delivery"
)

type Config struct {
	Service       string        `env:"SERVICE_NAME" envDefault:"notification-service"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	RunMigrations bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	DedupeTTL     time.Duration `env:"DEDUPE_TTL" envDefault:"24h"`
	DedupeSize    int           `env:"DEDUPE_CACHE_SIZE" envDefault:"10000"`

	Kafka    consumer.Config
	SMTP     email.SMTPConfig
	Delivery delivery.Config
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if len(config.List(cfg.Kafka.Brokers)) == 0 {
		return Config{}, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.DedupeSize < 1 {
		cfg.DedupeSize = 1
	}
	return cfg, nil
}
