package middleware

import (
	"time"

	otelinfra "payment-api/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// LoggingMiddleware アクセスログミドルウェア
// 1リクエストにつき完了時に1行を出力し、ステータスコードに応じてレベルを変える
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// 次のハンドラーを実行
			err := next(c)

			req := c.Request()
			res := c.Response()
			fields := map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"route":       c.Path(),
				"status_code": res.Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": c.RealIP(),
				"user_agent":  req.UserAgent(),
			}
			if requestID := res.Header().Get(echo.HeaderXRequestID); requestID != "" {
				fields["request_id"] = requestID
			}

			ctx := req.Context()
			switch {
			case err != nil:
				logger.Error(ctx, "HTTP request failed", err, fields)
			case res.Status >= 500:
				logger.Error(ctx, "HTTP request completed", nil, fields)
			case res.Status >= 400:
				logger.Warn(ctx, "HTTP request completed", fields)
			default:
				logger.Info(ctx, "HTTP request completed", fields)
			}

			return err
		}
	}
}
