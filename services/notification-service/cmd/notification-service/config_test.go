package main

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresBrokers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KAFKA_BROKERS", "")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error without KAFKA_BROKERS")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Kafka.Topic != "site.notifications" || cfg.Kafka.GroupID != "notification-service" {
		t.Fatalf("unexpected kafka config: %+v", cfg.Kafka)
	}
	if cfg.DedupeTTL != 24*time.Hour || cfg.Delivery.MaxAttempts != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SMTP.Port != "1025" {
		t.Fatalf("expected SMTP port 1025, got %q", cfg.SMTP.Port)
	}
}
