package interceptor

import (
	"context"
	"time"

	otelinfra "payment-api/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor RPCごとに1行のログを出力するインターセプター
func LoggingInterceptor(logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		fields := map[string]interface{}{
			"method":      info.FullMethod,
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Error(ctx, "gRPC request failed", err, fields)
		} else {
			logger.Debug(ctx, "gRPC request completed", fields)
		}

		return resp, err
	}
}
