package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"payment-api/internal/domain/payment"
	otelinfra "payment-api/internal/infrastructure/observability/otel"
)

// processingFailedMessage 決済処理失敗時にクライアントへ返す固定メッセージ
const processingFailedMessage = "failed to create payment intent"

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// StatusCodeFor エラー種別に対応するHTTPステータスコード
func StatusCodeFor(kind payment.ErrorKind) int {
	switch kind {
	case payment.ErrorKindValidation:
		return http.StatusBadRequest
	case payment.ErrorKindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// 決済エラーはサービス層でログ出力済みのためDebugに留める
	var validationErr *payment.ValidationError
	if errors.As(err, &validationErr) {
		logger.Debug(ctx, "Validation error", map[string]interface{}{
			"error":  err.Error(),
			"fields": validationErr.Fields,
		})
		return c.JSON(StatusCodeFor(payment.ErrorKindValidation), ErrorResponse{
			Error:   payment.ErrorKindValidation.String(),
			Message: validationErr.Error(),
			Code:    payment.ErrorKindValidation.String(),
			Fields:  validationErr.Fields,
		})
	}

	// 決済処理エラーは種別のみを返し、下位のメッセージはログにだけ残す
	var processingErr *payment.ProcessingError
	if errors.As(err, &processingErr) {
		kind := processingErr.Kind()
		logger.Debug(ctx, "Payment processing error", map[string]interface{}{
			"error": err.Error(),
			"kind":  kind.String(),
		})
		return c.JSON(StatusCodeFor(kind), ErrorResponse{
			Error:   kind.String(),
			Message: processingFailedMessage,
			Code:    kind.String(),
		})
	}

	var externalErr *payment.ExternalServiceError
	if errors.As(err, &externalErr) {
		logger.Warn(ctx, "External service error", map[string]interface{}{
			"error":     err.Error(),
			"processor": externalErr.Processor,
		})
		return c.JSON(StatusCodeFor(payment.ErrorKindExternalService), ErrorResponse{
			Error:   payment.ErrorKindExternalService.String(),
			Message: processingFailedMessage,
			Code:    payment.ErrorKindExternalService.String(),
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   payment.ErrorKindInternal.String(),
		Message: "An unexpected error occurred",
		Code:    payment.ErrorKindInternal.String(),
	})
}
