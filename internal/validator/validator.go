// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/Rhymond/go-money"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var last4Regex = regexp.MustCompile(`^[0-9]{4}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("card_kind", validateCardKind)
		_ = v.RegisterValidation("last4", validateLast4)
	}
}

// validateISO4217 accepts any currency code known to the go-money registry.
func validateISO4217(fl validator.FieldLevel) bool {
	return money.GetCurrency(fl.Field().String()) != nil
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "cash", "card":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateCardKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "UZCARD", "HUMO", "VISA", "MC":
		return true
	}
	return false
}

func validateLast4(fl validator.FieldLevel) bool {
	return last4Regex.MatchString(fl.Field().String())
}
