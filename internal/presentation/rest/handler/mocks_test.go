package handler

import (
	"context"

	"payment-api/internal/domain/payment"

	"github.com/stretchr/testify/mock"
)

// MockPaymentInitiator モックPaymentInitiator
type MockPaymentInitiator struct {
	mock.Mock
}

func (m *MockPaymentInitiator) Initiate(ctx context.Context, req *payment.PaymentRequest) (*payment.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentIntent), args.Error(1)
}
