package main

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.NotifyMode != notifyLog || cfg.RateLimitPerMinute != 30 || cfg.KafkaNotifyTopic != "site.notifications" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Policy.Capacity != 2 || cfg.Policy.Buffer != 15*time.Minute || cfg.Policy.Open != "10:00" {
		t.Fatalf("unexpected policy defaults: %+v", cfg.Policy)
	}
	if cfg.Notify.MaxAttempts != 3 || cfg.Admin.TokenTTL != 12*time.Hour || cfg.SMTP.Port != "1025" {
		t.Fatalf("unexpected nested defaults: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTIFY_MODE", "SMTP")
	t.Setenv("NOTIFY_ADMIN_RECIPIENTS", "a@x.nl, ,b@x.nl")
	t.Setenv("BOOKING_CAPACITY", "3")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.NotifyMode != notifySMTP || cfg.Policy.Capacity != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.AdminRecipients) != 2 || cfg.AdminRecipients[1] != "b@x.nl" {
		t.Fatalf("unexpected recipients: %v", cfg.AdminRecipients)
	}
}

func TestLoadConfigRejectsKafkaWithoutBrokers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTIFY_MODE", "kafka")
	t.Setenv("KAFKA_BROKERS", "")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error without brokers")
	}
}
