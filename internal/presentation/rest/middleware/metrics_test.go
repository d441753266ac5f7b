package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	otelinfra "payment-api/internal/infrastructure/observability/otel"
)

func newTestMetrics(t *testing.T) (*otelinfra.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := otelinfra.NewMetrics("test-meter")
	require.NoError(t, err)
	return metrics, reader
}

// int64Sums カウンター名ごとのデータポイントを収集
func int64Sums(t *testing.T, reader *sdkmetric.ManualReader) map[string][]metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	result := make(map[string][]metricdata.DataPoint[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				result[m.Name] = sum.DataPoints
			}
		}
	}
	return result
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		route         string
		status        int
		handlerErr    error
		wantRoute     string
		wantErrorType string
	}{
		{
			name:      "正常系: 200はエラーを記録しない",
			route:     "/api/payments/create",
			status:    http.StatusOK,
			wantRoute: "/api/payments/create",
		},
		{
			name:      "正常系: 3xxはエラーを記録しない",
			route:     "/redoc",
			status:    http.StatusFound,
			wantRoute: "/redoc",
		},
		{
			name:          "異常系: 400はclient_error",
			route:         "/api/payments/create",
			status:        http.StatusBadRequest,
			wantRoute:     "/api/payments/create",
			wantErrorType: "client_error",
		},
		{
			name:          "異常系: 502はserver_error",
			route:         "/api/payments/create",
			status:        http.StatusBadGateway,
			wantRoute:     "/api/payments/create",
			wantErrorType: "server_error",
		},
		{
			name:          "異常系: レスポンス未書き込みのエラーはserver_error",
			route:         "/api/payments/create",
			handlerErr:    errors.New("unhandled"),
			wantRoute:     "/api/payments/create",
			wantErrorType: "server_error",
		},
		{
			name:          "異常系: ルート未一致",
			route:         "",
			status:        http.StatusNotFound,
			wantRoute:     "unmatched",
			wantErrorType: "client_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, reader := newTestMetrics(t)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/payments/create", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath(tt.route)

			handler := MetricsMiddleware(metrics)(func(c echo.Context) error {
				if tt.handlerErr != nil {
					return tt.handlerErr
				}
				return c.NoContent(tt.status)
			})

			err := handler(c)
			assert.Equal(t, tt.handlerErr, err)

			sums := int64Sums(t, reader)

			requests := sums["requests_total"]
			require.Len(t, requests, 1)
			assert.Equal(t, int64(1), requests[0].Value)
			path, ok := requests[0].Attributes.Value(attribute.Key("path"))
			require.True(t, ok)
			assert.Equal(t, tt.wantRoute, path.AsString())

			errorsTotal := sums["errors_total"]
			if tt.wantErrorType == "" {
				assert.Empty(t, errorsTotal)
				return
			}
			require.Len(t, errorsTotal, 1)
			errorType, ok := errorsTotal[0].Attributes.Value(attribute.Key("error_type"))
			require.True(t, ok)
			assert.Equal(t, tt.wantErrorType, errorType.AsString())
		})
	}
}
