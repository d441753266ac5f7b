package payment

import "strings"

// PaymentRequest 決済リクエスト（リクエストスコープのみ、永続化しない）
type PaymentRequest struct {
	amount      int64  // 最小通貨単位（例: 5000 = $50.00）
	currency    string // 通貨コード（例: "usd"）
	description string
}

// NewPaymentRequest 新しいPaymentRequestを作成
func NewPaymentRequest(amount int64, currency, description string) (*PaymentRequest, error) {
	var fields []string
	if amount <= 0 {
		fields = append(fields, "amount")
	}
	if strings.TrimSpace(currency) == "" {
		fields = append(fields, "currency")
	}
	if strings.TrimSpace(description) == "" {
		fields = append(fields, "description")
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}

	return &PaymentRequest{
		amount:      amount,
		currency:    currency,
		description: description,
	}, nil
}

// Amount 金額を返す
func (pr *PaymentRequest) Amount() int64 {
	return pr.amount
}

// Currency 通貨コードを返す
func (pr *PaymentRequest) Currency() string {
	return pr.currency
}

// Description 説明を返す
func (pr *PaymentRequest) Description() string {
	return pr.description
}
