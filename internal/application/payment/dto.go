package payment

// CreatePaymentRequest 決済作成リクエスト
type CreatePaymentRequest struct {
	// Amount 最小通貨単位。未指定（nil）と0を区別する
	Amount      *int64 `field:"amount" validate:"required,gt=0"`
	Currency    string `field:"currency" validate:"notblank"`
	Description string `field:"description" validate:"notblank"`
}

// CreatePaymentResponse 決済作成レスポンス
type CreatePaymentResponse struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}
