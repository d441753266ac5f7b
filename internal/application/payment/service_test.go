package payment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	paymentdomain "payment-api/internal/domain/payment"
	otelinfra "payment-api/internal/infrastructure/observability/otel"
)

// MockPaymentInitiator モックPaymentInitiator
type MockPaymentInitiator struct {
	mock.Mock
}

func (m *MockPaymentInitiator) Initiate(ctx context.Context, req *paymentdomain.PaymentRequest) (*paymentdomain.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentdomain.PaymentIntent), args.Error(1)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func newTestService(t *testing.T, initiator paymentdomain.PaymentInitiator) (*PaymentApplicationService, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer, otelinfra.WithCore(core))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)
	return NewPaymentApplicationService(initiator, logger, metrics), logs
}

func TestPaymentApplicationService_CreatePayment(t *testing.T) {
	tests := []struct {
		name       string
		req        *CreatePaymentRequest
		setupMocks func(*MockPaymentInitiator)
		wantError  bool
		checkFunc  func(*testing.T, *CreatePaymentResponse, error)
	}{
		{
			name: "正常系: PaymentIntentを作成",
			req: &CreatePaymentRequest{
				Amount:      int64Ptr(5000),
				Currency:    "usd",
				Description: "Order #1",
			},
			setupMocks: func(m *MockPaymentInitiator) {
				m.On("Initiate", mock.Anything, mock.MatchedBy(func(r *paymentdomain.PaymentRequest) bool {
					return r.Amount() == 5000 && r.Currency() == "usd" && r.Description() == "Order #1"
				})).Return(
					paymentdomain.NewPaymentIntent("pi_123", "secret_abc", 5000, "usd", paymentdomain.IntentStatusRequiresPaymentMethod),
					nil,
				).Once()
			},
			wantError: false,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				assert.Equal(t, &CreatePaymentResponse{
					ID:           "pi_123",
					ClientSecret: "secret_abc",
					Amount:       5000,
					Currency:     "usd",
					Status:       "requires_payment_method",
				}, resp)
			},
		},
		{
			name: "正常系: 金額と通貨はプロセッサーの値を返す",
			req: &CreatePaymentRequest{
				Amount:      int64Ptr(5000),
				Currency:    "USD",
				Description: "Order #2",
			},
			setupMocks: func(m *MockPaymentInitiator) {
				m.On("Initiate", mock.Anything, mock.Anything).Return(
					paymentdomain.NewPaymentIntent("pi_456", "secret_def", 5000, "usd", paymentdomain.IntentStatusRequiresPaymentMethod),
					nil,
				).Once()
			},
			wantError: false,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				assert.Equal(t, "usd", resp.Currency)
				assert.Equal(t, int64(5000), resp.Amount)
			},
		},
		{
			name: "異常系: 金額が未指定",
			req: &CreatePaymentRequest{
				Amount:      nil,
				Currency:    "usd",
				Description: "Order #1",
			},
			setupMocks: func(m *MockPaymentInitiator) {},
			wantError:  true,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				var validationErr *paymentdomain.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, []string{"amount"}, validationErr.Fields)
			},
		},
		{
			name: "異常系: 金額が0",
			req: &CreatePaymentRequest{
				Amount:      int64Ptr(0),
				Currency:    "usd",
				Description: "Order #1",
			},
			setupMocks: func(m *MockPaymentInitiator) {},
			wantError:  true,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				var validationErr *paymentdomain.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, []string{"amount"}, validationErr.Fields)
			},
		},
		{
			name: "異常系: 通貨と説明が空白",
			req: &CreatePaymentRequest{
				Amount:      int64Ptr(100),
				Currency:    "  ",
				Description: "",
			},
			setupMocks: func(m *MockPaymentInitiator) {},
			wantError:  true,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				var validationErr *paymentdomain.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, []string{"currency", "description"}, validationErr.Fields)
			},
		},
		{
			name:       "異常系: リクエストがnil",
			req:        nil,
			setupMocks: func(m *MockPaymentInitiator) {},
			wantError:  true,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				assert.Equal(t, paymentdomain.ErrorKindValidation, paymentdomain.KindOf(err))
			},
		},
		{
			name: "異常系: プロセッサーへの接続失敗",
			req: &CreatePaymentRequest{
				Amount:      int64Ptr(5000),
				Currency:    "usd",
				Description: "Order #1",
			},
			setupMocks: func(m *MockPaymentInitiator) {
				m.On("Initiate", mock.Anything, mock.Anything).Return(nil, &paymentdomain.ExternalServiceError{
					Processor: "stripe",
					Message:   "dial tcp 127.0.0.1:443: connect: connection refused",
				}).Once()
			},
			wantError: true,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				var procErr *paymentdomain.ProcessingError
				require.True(t, errors.As(err, &procErr))
				assert.Equal(t, paymentdomain.ErrorKindExternalService, procErr.Kind())
				assert.Contains(t, procErr.Message(), "connection refused")

				// プロセッサー固有のエラー型は公開しない
				var extErr *paymentdomain.ExternalServiceError
				assert.False(t, errors.As(err, &extErr))
			},
		},
		{
			name: "異常系: イニシエーターが結果を返さない",
			req: &CreatePaymentRequest{
				Amount:      int64Ptr(5000),
				Currency:    "usd",
				Description: "Order #1",
			},
			setupMocks: func(m *MockPaymentInitiator) {
				m.On("Initiate", mock.Anything, mock.Anything).Return(nil, nil).Once()
			},
			wantError: true,
			checkFunc: func(t *testing.T, resp *CreatePaymentResponse, err error) {
				assert.Equal(t, paymentdomain.ErrorKindInternal, paymentdomain.KindOf(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initiator := new(MockPaymentInitiator)
			tt.setupMocks(initiator)

			service, _ := newTestService(t, initiator)

			resp, err := service.CreatePayment(context.Background(), tt.req)

			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, resp)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, resp, err)
			}

			initiator.AssertExpectations(t)
		})
	}
}

func TestPaymentApplicationService_CreatePayment_ValidationSkipsInitiator(t *testing.T) {
	invalid := []*CreatePaymentRequest{
		{Amount: nil, Currency: "usd", Description: "Order #1"},
		{Amount: int64Ptr(-5), Currency: "usd", Description: "Order #1"},
		{Amount: int64Ptr(5000), Currency: "", Description: "Order #1"},
		{Amount: int64Ptr(5000), Currency: "usd", Description: ""},
	}

	for _, req := range invalid {
		initiator := new(MockPaymentInitiator)
		service, _ := newTestService(t, initiator)

		_, err := service.CreatePayment(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, paymentdomain.ErrInvalidPaymentRequest))
		initiator.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	}
}

func TestPaymentApplicationService_CreatePayment_Logging(t *testing.T) {
	t.Run("成功時は受信と成功の2行", func(t *testing.T) {
		initiator := new(MockPaymentInitiator)
		initiator.On("Initiate", mock.Anything, mock.Anything).Return(
			paymentdomain.NewPaymentIntent("pi_123", "secret_abc", 5000, "usd", paymentdomain.IntentStatusRequiresPaymentMethod),
			nil,
		)
		service, logs := newTestService(t, initiator)

		_, err := service.CreatePayment(context.Background(), &CreatePaymentRequest{
			Amount: int64Ptr(5000), Currency: "usd", Description: "Order #1",
		})
		require.NoError(t, err)

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, "Received payment request", entries[0].Message)
		assert.EqualValues(t, 5000, entries[0].ContextMap()["amount"])
		assert.Equal(t, "usd", entries[0].ContextMap()["currency"])
		assert.Equal(t, "Successfully created payment intent", entries[1].Message)
		assert.Equal(t, "pi_123", entries[1].ContextMap()["payment_intent_id"])
	})

	t.Run("失敗時は受信とエラーの2行", func(t *testing.T) {
		initiator := new(MockPaymentInitiator)
		initiator.On("Initiate", mock.Anything, mock.Anything).Return(nil, &paymentdomain.ExternalServiceError{
			Processor: "stripe",
			Message:   "connection refused",
		})
		service, logs := newTestService(t, initiator)

		_, err := service.CreatePayment(context.Background(), &CreatePaymentRequest{
			Amount: int64Ptr(5000), Currency: "usd", Description: "Order #1",
		})
		require.Error(t, err)

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Contains(t, entries[1].ContextMap()["error"], "connection refused")
		assert.Equal(t, "external_service_error", entries[1].ContextMap()["kind"])
		assert.Equal(t, "stripe: connection refused", entries[1].ContextMap()["cause"])
	})
}

func TestPaymentApplicationService_CreatePayment_Metrics(t *testing.T) {
	tests := []struct {
		name       string
		req        *CreatePaymentRequest
		initErr    error
		wantKind   string
		wantIntent bool
	}{
		{
			name:     "異常系: バリデーションエラーはvalidation_error",
			req:      &CreatePaymentRequest{Currency: "usd", Description: "Order #1"},
			wantKind: "validation_error",
		},
		{
			name:     "異常系: プロセッサーエラーはexternal_service_error",
			req:      &CreatePaymentRequest{Amount: int64Ptr(5000), Currency: "usd", Description: "Order #1"},
			initErr:  &paymentdomain.ExternalServiceError{Processor: "stripe", Message: "connection refused"},
			wantKind: "external_service_error",
		},
		{
			name:       "正常系: 成功時はエラーを記録しない",
			req:        &CreatePaymentRequest{Amount: int64Ptr(5000), Currency: "usd", Description: "Order #1"},
			wantIntent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
			otel.SetMeterProvider(mp)
			t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

			initiator := new(MockPaymentInitiator)
			if tt.wantIntent {
				initiator.On("Initiate", mock.Anything, mock.Anything).Return(
					paymentdomain.NewPaymentIntent("pi_123", "secret_abc", 5000, "usd", paymentdomain.IntentStatusRequiresPaymentMethod),
					nil,
				)
			} else {
				initiator.On("Initiate", mock.Anything, mock.Anything).Return(nil, tt.initErr)
			}
			service, _ := newTestService(t, initiator)

			_, _ = service.CreatePayment(context.Background(), tt.req)

			var rm metricdata.ResourceMetrics
			require.NoError(t, reader.Collect(context.Background(), &rm))
			got := make(map[string]metricdata.Metrics)
			for _, sm := range rm.ScopeMetrics {
				for _, m := range sm.Metrics {
					got[m.Name] = m
				}
			}

			// HTTPエラー数はミドルウェアのみが記録する
			assert.NotContains(t, got, "errors_total")

			if tt.wantKind == "" {
				assert.NotContains(t, got, "payment_errors_total")
				assert.Contains(t, got, "payment_intents_total")
				return
			}
			sum, ok := got["payment_errors_total"].Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			assert.Equal(t, int64(1), sum.DataPoints[0].Value)
			kind, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("kind"))
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, kind.AsString())
		})
	}
}

// countingInitiator 呼び出しごとに別IDを返すイニシエーター
type countingInitiator struct {
	n atomic.Int64
}

func (c *countingInitiator) Initiate(ctx context.Context, req *paymentdomain.PaymentRequest) (*paymentdomain.PaymentIntent, error) {
	n := c.n.Add(1)
	id := "pi_" + string(rune('a'+n-1))
	return paymentdomain.NewPaymentIntent(id, "secret_"+id, req.Amount(), req.Currency(), paymentdomain.IntentStatusRequiresPaymentMethod), nil
}

func TestPaymentApplicationService_CreatePayment_NotIdempotent(t *testing.T) {
	// 同一入力の2回の呼び出しで別々のPaymentIntentが作成される
	initiator := &countingInitiator{}
	service, _ := newTestService(t, initiator)
	req := &CreatePaymentRequest{Amount: int64Ptr(5000), Currency: "usd", Description: "Order #1"}

	first, err := service.CreatePayment(context.Background(), req)
	require.NoError(t, err)
	second, err := service.CreatePayment(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(2), initiator.n.Load())
}
