package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validateMaxBytes в отличии от тэга max, который проверяет длину в рунах, проверяет длину в байтах.
// Колонки описаний в БД ограничены байтами.
func validateMaxBytes(fl validator.FieldLevel) bool {
	maxBytes, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return len(str) <= maxBytes
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("max_bytes", validateMaxBytes); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
