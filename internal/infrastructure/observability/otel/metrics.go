package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 作成されたPaymentIntent数
	PaymentIntentCount metric.Int64Counter

	// 決済プロセッサー呼び出しのレイテンシ
	ProcessorLatency metric.Float64Histogram

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// HTTPエラー数（client_error / server_error）
	ErrorCount metric.Int64Counter

	// 決済処理エラー数（ErrorKind別）
	PaymentErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := Meter(meterName)

	paymentIntentCount, err := meter.Int64Counter(
		"payment_intents_total",
		metric.WithDescription("Total number of payment intents created"),
	)
	if err != nil {
		return nil, err
	}

	processorLatency, err := meter.Float64Histogram(
		"processor_request_duration_seconds",
		metric.WithDescription("Payment processor call latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	paymentErrorCount, err := meter.Int64Counter(
		"payment_errors_total",
		metric.WithDescription("Total number of failed payment requests by error kind"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PaymentIntentCount: paymentIntentCount,
		ProcessorLatency:   processorLatency,
		RequestCount:       requestCount,
		ResponseTime:       responseTime,
		ErrorCount:         errorCount,
		PaymentErrorCount:  paymentErrorCount,
	}, nil
}

// RecordPaymentIntent PaymentIntentの作成を記録
func (m *Metrics) RecordPaymentIntent(ctx context.Context, currency, status string) {
	m.PaymentIntentCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("currency", currency),
			attribute.String("status", status),
		),
	)
}

// RecordProcessorLatency 決済プロセッサー呼び出し時間を記録（秒単位）
func (m *Metrics) RecordProcessorLatency(ctx context.Context, processor, outcome string, duration float64) {
	m.ProcessorLatency.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("processor", processor),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError HTTPエラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}

// RecordPaymentError 決済処理エラーをErrorKind別に記録
func (m *Metrics) RecordPaymentError(ctx context.Context, kind string) {
	m.PaymentErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
		),
	)
}
