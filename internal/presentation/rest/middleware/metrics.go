package middleware

import (
	"time"

	otelinfra "payment-api/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// unmatchedRoute ルートに一致しなかったリクエストのパスラベル
const unmatchedRoute = "unmatched"

// MetricsMiddleware メトリクス記録ミドルウェア
// パスラベルにはルートテンプレートを使い、カーディナリティを抑える
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()
			method := c.Request().Method

			// 次のハンドラーを実行
			err := next(c)

			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}

			// リクエスト数とレスポンス時間を記録（秒単位）
			metrics.RecordRequest(ctx, method, route)
			metrics.RecordResponseTime(ctx, method, route, time.Since(start).Seconds())

			// 4xx, 5xxエラーの場合のみ記録
			statusCode := c.Response().Status
			if err != nil && statusCode < 400 {
				statusCode = 500
			}
			if statusCode >= 400 {
				errorType := "client_error"
				if statusCode >= 500 {
					errorType = "server_error"
				}
				metrics.RecordError(ctx, errorType)
			}

			return err
		}
	}
}
