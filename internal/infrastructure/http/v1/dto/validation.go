package dto

import (
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"tradedesk/internal/core/types"
)

// RegisterValidators adds the custom binding tags to gin's validator:
//
//	qty_positive  a types.Quantity greater than zero
//	decimal_gte0  a decimal that is not negative
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	// Decimals validate as their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("qty_positive", qtyPositive); err != nil {
		return err
	}
	return v.RegisterValidation("decimal_gte0", decimalGTE0)
}

func qtyPositive(fl validator.FieldLevel) bool {
	if q, ok := fl.Field().Interface().(types.Quantity); ok {
		return q.IsPositive()
	}
	return false
}

func decimalGTE0(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}
