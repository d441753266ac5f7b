package handler

import (
	"fmt"
	"net/http"

	paymentapp "payment-api/internal/application/payment"
	paymentdomain "payment-api/internal/domain/payment"

	"github.com/labstack/echo/v4"
)

// invalidBodyField ボディ自体が解釈できない場合にValidationErrorへ載せるフィールド名
const invalidBodyField = "body"

// PaymentHandler 決済関連ハンドラー
type PaymentHandler struct {
	paymentService *paymentapp.PaymentApplicationService
}

// NewPaymentHandler 新しいPaymentHandlerを作成
func NewPaymentHandler(paymentService *paymentapp.PaymentApplicationService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePayment PaymentIntent作成ハンドラー
// @Summary PaymentIntentを作成
// @Description 金額・通貨・説明を受け取り、決済プロセッサーにPaymentIntentを作成します
// @Tags payment
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequest true "PaymentIntent作成リクエスト"
// @Success 200 {object} PaymentIntentResponse "作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 502 {object} ErrorResponse "決済プロセッサーエラー"
// @Failure 500 {object} ErrorResponse "内部エラー"
// @Router /payments/create [post]
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	// JSONとして読めないボディも入力不正として扱う
	var reqBody CreatePaymentRequest
	if err := c.Bind(&reqBody); err != nil {
		return fmt.Errorf("bind request body: %w", paymentdomain.NewValidationError(invalidBodyField))
	}

	req := &paymentapp.CreatePaymentRequest{
		Amount:      reqBody.Amount,
		Currency:    reqBody.Currency,
		Description: reqBody.Description,
	}

	resp, err := h.paymentService.CreatePayment(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PaymentIntentResponse{
		ID:           resp.ID,
		ClientSecret: resp.ClientSecret,
		Amount:       resp.Amount,
		Currency:     resp.Currency,
		Status:       resp.Status,
	})
}
