package payment

import (
	"context"
)

// PaymentInitiator 決済プロセッサーにPaymentIntentの作成を依頼するインターフェース
type PaymentInitiator interface {
	// Initiate PaymentIntentを作成する（1回の呼び出しにつき1回だけプロセッサーを呼ぶ）
	// 失敗時は *ExternalServiceError を返す
	Initiate(ctx context.Context, req *PaymentRequest) (*PaymentIntent, error)
}
