package handler

// CreatePaymentRequest PaymentIntent作成リクエスト
// @Description amountは最小通貨単位（usdならセント）
type CreatePaymentRequest struct {
	Amount      *int64 `json:"amount" example:"5000"`
	Currency    string `json:"currency" example:"usd"`
	Description string `json:"description" example:"Order #1"`
}

// PaymentIntentResponse PaymentIntent作成レスポンス
// @Description 決済プロセッサーが返した値をそのまま返す
type PaymentIntentResponse struct {
	ID           string `json:"id" example:"pi_123"`
	ClientSecret string `json:"clientSecret" example:"pi_123_secret_abc"`
	Amount       int64  `json:"amount" example:"5000"`
	Currency     string `json:"currency" example:"usd"`
	Status       string `json:"status" example:"requires_payment_method"`
}

// ErrorResponse エラーレスポンス
// @Description errorはエラー種別（validation_error / external_service_error / internal_error）
type ErrorResponse struct {
	Error   string   `json:"error" example:"validation_error"`
	Message string   `json:"message" example:"invalid payment request: amount"`
	Code    string   `json:"code,omitempty" example:"validation_error"`
	Fields  []string `json:"fields,omitempty"`
}
