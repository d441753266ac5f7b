package stripe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"payment-api/internal/domain/payment"
	"payment-api/internal/infrastructure/config"
	otelinfra "payment-api/internal/infrastructure/observability/otel"
)

const (
	processorName = "stripe"

	// orderIDMetadataKey PaymentIntentのmetadataに付与する追跡用キー
	orderIDMetadataKey = "order_id"
	orderIDPrefix      = "ORDER_"
)

// NewBackend Stripe APIバックエンドを作成
// リトライは行わず、HTTPクライアントはSDKのデフォルトを使用する
func NewBackend(cfg *config.StripeConfig, logger *otelinfra.Logger) stripego.Backend {
	backendCfg := &stripego.BackendConfig{
		MaxNetworkRetries: stripego.Int64(0),
		// SDK内部のログはWarn以上のみ出力
		LeveledLogger: logger.Sugar().WithOptions(zap.IncreaseLevel(zapcore.WarnLevel)),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripego.String(cfg.APIURL)
	}
	return stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg)
}

// PaymentIntentInitiator Stripe PaymentIntent APIを使うPaymentInitiator実装
type PaymentIntentInitiator struct {
	client     *paymentintent.Client
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	tracer     trace.Tracer
	newOrderID func() string
}

var _ payment.PaymentInitiator = (*PaymentIntentInitiator)(nil)

// NewPaymentIntentInitiator 新しいPaymentIntentInitiatorを作成
func NewPaymentIntentInitiator(
	cfg *config.StripeConfig,
	backend stripego.Backend,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PaymentIntentInitiator {
	return &PaymentIntentInitiator{
		client:     &paymentintent.Client{B: backend, Key: cfg.SecretKey},
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("stripe-initiator"),
		newOrderID: generateOrderID,
	}
}

// Initiate PaymentIntentを作成
func (i *PaymentIntentInitiator) Initiate(ctx context.Context, req *payment.PaymentRequest) (*payment.PaymentIntent, error) {
	ctx, span := i.tracer.Start(ctx, "PaymentIntentInitiator.Initiate",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	orderID := i.newOrderID()
	span.SetAttributes(
		attribute.String("payment.processor", processorName),
		attribute.String("payment.order_id", orderID),
		attribute.Int64("payment.amount", req.Amount()),
		attribute.String("payment.currency", req.Currency()),
	)

	params := &stripego.PaymentIntentParams{
		Amount:      stripego.Int64(req.Amount()),
		Currency:    stripego.String(req.Currency()),
		Description: stripego.String(req.Description()),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(orderIDMetadataKey, orderID)

	i.logger.Debug(ctx, "Creating Stripe PaymentIntent", map[string]interface{}{
		"amount":   req.Amount(),
		"order_id": orderID,
	})

	start := time.Now()
	pi, err := i.client.New(params)
	duration := time.Since(start).Seconds()
	if err != nil {
		i.metrics.RecordProcessorLatency(ctx, processorName, "failure", duration)
		extErr := toExternalServiceError(err)
		span.RecordError(extErr)
		span.SetStatus(otelcodes.Error, extErr.Error())
		return nil, extErr
	}
	i.metrics.RecordProcessorLatency(ctx, processorName, "success", duration)

	span.SetAttributes(
		attribute.String("payment.intent_id", pi.ID),
		attribute.String("payment.status", string(pi.Status)),
	)

	status := payment.IntentStatus(pi.Status)
	if !status.Known() {
		// 未知のステータスもそのまま返す
		i.logger.Warn(ctx, "Unknown payment intent status", map[string]interface{}{
			"payment_intent_id": pi.ID,
			"status":            status.String(),
		})
	}

	return payment.NewPaymentIntent(
		pi.ID,
		pi.ClientSecret,
		pi.Amount,
		string(pi.Currency),
		status,
	), nil
}

// toExternalServiceError Stripe SDKのエラーをExternalServiceErrorに変換
func toExternalServiceError(err error) *payment.ExternalServiceError {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		message := stripeErr.Msg
		if message == "" {
			message = string(stripeErr.Type)
		}
		return &payment.ExternalServiceError{
			Processor:  processorName,
			Type:       string(stripeErr.Type),
			Code:       string(stripeErr.Code),
			HTTPStatus: stripeErr.HTTPStatusCode,
			Message:    message,
			Err:        err,
		}
	}
	return &payment.ExternalServiceError{
		Processor: processorName,
		Message:   err.Error(),
		Err:       err,
	}
}

// generateOrderID 呼び出しごとに一意な追跡用IDを生成
func generateOrderID() string {
	return orderIDPrefix + uuid.NewString()
}
