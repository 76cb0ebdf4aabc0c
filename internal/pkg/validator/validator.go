package validator

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/geo-gateway/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate - валидация структуры; ошибки полей превращаются в INVALID_REQUEST с деталями
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return errors.ErrInvalidRequest
	}

	fields := make(map[string]interface{}, len(validationErrs))
	for _, fe := range validationErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[strings.ToLower(fe.Field())] = rule
	}

	return errors.ErrInvalidRequest.WithDetails(fields)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
