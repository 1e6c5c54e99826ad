package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate проверяет теги `validate` структуры. Используется там, где тело
// запроса разбирается не через echo.Context.Bind
func Validate(v any) error {
	return validate.Struct(v)
}
