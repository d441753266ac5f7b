package payment

// IntentStatus 決済プロセッサーが管理するPaymentIntentのステータス
// このサービスでは解釈せずそのまま中継する
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusCanceled              IntentStatus = "canceled"
	IntentStatusSucceeded             IntentStatus = "succeeded"
)

// String 文字列表現を返す
func (s IntentStatus) String() string {
	return string(s)
}

// Known 既知のステータスかどうかを返す
func (s IntentStatus) Known() bool {
	switch s {
	case IntentStatusRequiresPaymentMethod,
		IntentStatusRequiresConfirmation,
		IntentStatusRequiresAction,
		IntentStatusProcessing,
		IntentStatusRequiresCapture,
		IntentStatusCanceled,
		IntentStatusSucceeded:
		return true
	default:
		return false
	}
}

// PaymentIntent 決済プロセッサーが作成したPaymentIntent
type PaymentIntent struct {
	id           string
	clientSecret string
	amount       int64
	currency     string
	status       IntentStatus
}

// NewPaymentIntent 決済プロセッサーのレスポンスからPaymentIntentを作成
func NewPaymentIntent(id, clientSecret string, amount int64, currency string, status IntentStatus) *PaymentIntent {
	return &PaymentIntent{
		id:           id,
		clientSecret: clientSecret,
		amount:       amount,
		currency:     currency,
		status:       status,
	}
}

// ID PaymentIntent IDを返す
func (pi *PaymentIntent) ID() string {
	return pi.id
}

// ClientSecret クライアントシークレットを返す
func (pi *PaymentIntent) ClientSecret() string {
	return pi.clientSecret
}

// Amount 決済プロセッサーが返した金額を返す
func (pi *PaymentIntent) Amount() int64 {
	return pi.amount
}

// Currency 決済プロセッサーが返した通貨コードを返す
func (pi *PaymentIntent) Currency() string {
	return pi.currency
}

// Status ステータスを返す
func (pi *PaymentIntent) Status() IntentStatus {
	return pi.status
}
