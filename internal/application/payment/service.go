package payment

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	paymentdomain "payment-api/internal/domain/payment"
	otelinfra "payment-api/internal/infrastructure/observability/otel"
)

// PaymentApplicationService 決済アプリケーションサービス
type PaymentApplicationService struct {
	initiator paymentdomain.PaymentInitiator
	validator *requestValidator
	logger    *otelinfra.Logger
	metrics   *otelinfra.Metrics
	tracer    trace.Tracer
}

// NewPaymentApplicationService 新しいPaymentApplicationServiceを作成
func NewPaymentApplicationService(
	initiator paymentdomain.PaymentInitiator,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PaymentApplicationService {
	return &PaymentApplicationService{
		initiator: initiator,
		validator: newRequestValidator(),
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("payment-service"),
	}
}

// CreatePayment 決済プロセッサーにPaymentIntentを作成する
// 同一入力で複数回呼ぶと、その都度別のPaymentIntentが作成される
func (s *PaymentApplicationService) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentApplicationService.CreatePayment")
	defer span.End()

	fields := map[string]interface{}{}
	if req != nil {
		fields["currency"] = req.Currency
		if req.Amount != nil {
			fields["amount"] = *req.Amount
			span.SetAttributes(attribute.Int64("amount", *req.Amount))
		}
		span.SetAttributes(attribute.String("currency", req.Currency))
	}
	s.logger.Info(ctx, "Received payment request", fields)

	// バリデーション（プロセッサー呼び出し前）
	if err := s.validator.Validate(req); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Warn(ctx, "Invalid payment request", map[string]interface{}{
			"error": err.Error(),
		})
		s.metrics.RecordPaymentError(ctx, paymentdomain.KindOf(err).String())
		return nil, err
	}

	paymentReq, err := paymentdomain.NewPaymentRequest(*req.Amount, req.Currency, req.Description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordPaymentError(ctx, paymentdomain.KindOf(err).String())
		return nil, err
	}

	intent, err := s.initiator.Initiate(ctx, paymentReq)
	if err == nil && intent == nil {
		err = errors.New("payment initiator returned no payment intent")
	}
	if err != nil {
		procErr := paymentdomain.NewProcessingError(err)
		span.RecordError(procErr)
		span.SetStatus(otelcodes.Error, procErr.Error())
		s.logger.Error(ctx, "Error creating payment intent", procErr, map[string]interface{}{
			"kind":  procErr.Kind().String(),
			"cause": procErr.Message(),
		})
		s.metrics.RecordPaymentError(ctx, procErr.Kind().String())
		return nil, procErr
	}

	span.SetAttributes(
		attribute.String("payment_intent_id", intent.ID()),
		attribute.String("status", intent.Status().String()),
	)
	s.logger.Info(ctx, "Successfully created payment intent", map[string]interface{}{
		"payment_intent_id": intent.ID(),
	})
	s.metrics.RecordPaymentIntent(ctx, intent.Currency(), intent.Status().String())

	return &CreatePaymentResponse{
		ID:           intent.ID(),
		ClientSecret: intent.ClientSecret(),
		Amount:       intent.Amount(),
		Currency:     intent.Currency(),
		Status:       intent.Status().String(),
	}, nil
}
