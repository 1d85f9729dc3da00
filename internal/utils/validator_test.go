// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type currencyInput struct {
	Code string `validate:"omitempty,currency_code"`
}

func TestCurrencyCodeValidation(t *testing.T) {
	t.Run("accepts empty", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(&currencyInput{}))
	})

	t.Run("accepts ISO style codes", func(t *testing.T) {
		for _, code := range []string{"USD", "SAR", "AED", "EUR"} {
			assert.NoError(t, ValidateStruct(&currencyInput{Code: code}), code)
		}
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"usd", "US", "DOLLARS", "U5D"} {
			err := ValidateStruct(&currencyInput{Code: code})
			assert.Error(t, err, code)

			fieldErrors := GetValidationErrors(err)
			assert.Len(t, fieldErrors, 1)
			assert.Equal(t, "currency_code", fieldErrors[0].Tag)
		}
	})
}
