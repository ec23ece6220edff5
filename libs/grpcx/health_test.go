package grpcx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"

	"github.com/websitekoning/koning-api/libs/requestid"
	"github.com/websitekoning/koning-api/libs/runtime"
)

func TestHealthServerRefresh(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	failing := true
	hs := NewHealthServer(logger, "site", 0, runtime.ReadyCheck{
		Name: "db",
		Check: func(context.Context) error {
			if failing {
				return errors.New("down")
			}
			return nil
		},
	})

	ctx := context.Background()
	if got := hs.Refresh(ctx); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", got)
	}
	resp, err := hs.health.Check(ctx, &healthpb.HealthCheckRequest{Service: "site"})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING for named service, got %v", resp.GetStatus())
	}

	failing = false
	if got := hs.Refresh(ctx); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", got)
	}
}

func TestUnaryServerInterceptorRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	intercept := UnaryServerInterceptor(logger)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	var seen string
	handler := func(ctx context.Context, _ any) (any, error) {
		seen = requestid.FromContext(ctx)
		return nil, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestid.MetadataKey, "probe-1"))
	if _, err := intercept(ctx, nil, info, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen != "probe-1" {
		t.Fatalf("expected inbound id, got %q", seen)
	}

	if _, err := intercept(context.Background(), nil, info, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen == "" || seen == "probe-1" {
		t.Fatalf("expected a minted id, got %q", seen)
	}
}
