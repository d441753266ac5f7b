package payment

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	paymentdomain "payment-api/internal/domain/payment"
)

// requestValidator CreatePaymentRequestの検証器
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーにはfieldタグの名前（JSON名）を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("field"); name != "" {
			return name
		}
		return fld.Name
	})

	// 空白のみの文字列も空として扱う
	// 登録に失敗したままだとStruct()が未知のタグでpanicするため、構築時に落とす
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}

	return &requestValidator{validate: v}
}

// notBlank 空白以外の文字を含むかを判定
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate 検証に失敗したフィールドを *paymentdomain.ValidationError として返す
func (rv *requestValidator) Validate(req *CreatePaymentRequest) error {
	if req == nil {
		return paymentdomain.NewValidationError("amount", "currency", "description")
	}

	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fe.Field())
	}
	return paymentdomain.NewValidationError(fields...)
}
