package payment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPaymentRequest 無効な決済リクエストエラー
	ErrInvalidPaymentRequest = errors.New("invalid payment request")
	// ErrExternalService 決済プロセッサー呼び出し失敗エラー
	ErrExternalService = errors.New("external service error")
	// ErrPaymentProcessingFailed 決済処理失敗エラー
	ErrPaymentProcessingFailed = errors.New("payment processing failed")
)

// ErrorKind エラー種別
type ErrorKind string

const (
	ErrorKindValidation      ErrorKind = "validation_error"       // 入力不正
	ErrorKindExternalService ErrorKind = "external_service_error" // 決済プロセッサー側の失敗
	ErrorKindInternal        ErrorKind = "internal_error"         // 想定外
)

// String 文字列表現を返す
func (k ErrorKind) String() string {
	return string(k)
}

// KindOf エラーからErrorKindを判定する
func KindOf(err error) ErrorKind {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorKindValidation
	}
	var processingErr *ProcessingError
	if errors.As(err, &processingErr) {
		return processingErr.Kind()
	}
	var externalErr *ExternalServiceError
	if errors.As(err, &externalErr) {
		return ErrorKindExternalService
	}
	return ErrorKindInternal
}

// ValidationError 入力検証エラー
type ValidationError struct {
	// Fields 不正なフィールド名（JSON名）
	Fields []string
}

// NewValidationError 新しいValidationErrorを作成
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidPaymentRequest.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidPaymentRequest.Error(), strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPaymentRequest
}

// ExternalServiceError 決済プロセッサー呼び出しエラー
type ExternalServiceError struct {
	Processor  string
	Type       string
	Code       string
	HTTPStatus int
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Processor, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Processor, e.Message)
}

func (e *ExternalServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExternalService}
	}
	return []error{ErrExternalService, e.Err}
}

// ProcessingError 境界で再ラップされた決済処理エラー
// 元のエラー型は公開せず、メッセージのみ保持する
type ProcessingError struct {
	kind    ErrorKind
	message string
}

// NewProcessingError 下位のエラーからProcessingErrorを作成
func NewProcessingError(cause error) *ProcessingError {
	kind := ErrorKindInternal
	var externalErr *ExternalServiceError
	if errors.As(cause, &externalErr) {
		kind = ErrorKindExternalService
	}
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return &ProcessingError{kind: kind, message: message}
}

// Kind エラー種別を返す
func (e *ProcessingError) Kind() ErrorKind {
	return e.kind
}

// Message 下位エラーのメッセージを返す
func (e *ProcessingError) Message() string {
	return e.message
}

func (e *ProcessingError) Error() string {
	if e.message == "" {
		return ErrPaymentProcessingFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPaymentProcessingFailed.Error(), e.message)
}

func (e *ProcessingError) Unwrap() error {
	return ErrPaymentProcessingFailed
}
