package grpcx

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/websitekoning/koning-api/libs/requestid"
)

// UnaryServerInterceptor tags every call with a request id, echoes it in the
// response header and logs the outcome. Health probes log at debug.
func UnaryServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		raw := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestid.MetadataKey); len(vals) > 0 {
				raw = vals[0]
			}
		}
		id := requestid.Accept(raw)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestid.MetadataKey, id))

		start := time.Now()
		resp, err := handler(requestid.NewContext(ctx, id), req)

		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc request",
			"request_id", id,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
