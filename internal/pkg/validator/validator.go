package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pesokrava/catalog/internal/domain"
)

// Shared validator instance to avoid creating multiple instances
var validate *validator.Validate

// Tags reported by the struct-level status/stock rule
const (
	tagStockZero     = "stock_zero_when_out_of_stock"
	tagStockPositive = "stock_positive_when_available"
)

func init() {
	validate = validator.New()

	// Report failures under json field names so the wire details match
	// the request payload
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterStructValidation(productStatusStock, domain.Product{})
}

// productStatusStock enforces the status/stock coupling:
// out_of_stock requires stock_quantity == 0, the other statuses require
// stock_quantity > 0. An unknown status is left to the oneof field rule.
func productStatusStock(sl validator.StructLevel) {
	product := sl.Current().Interface().(domain.Product)

	if !product.Status.Valid() {
		return
	}

	if product.Status == domain.StatusOutOfStock {
		if product.StockQuantity != 0 {
			sl.ReportError(product.StockQuantity, "stock_quantity", "StockQuantity", tagStockZero, "")
		}
		return
	}

	if product.StockQuantity <= 0 {
		sl.ReportError(product.StockQuantity, "stock_quantity", "StockQuantity", tagStockPositive, "")
	}
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

// ValidateProduct runs the full field and cross-field rule set against a
// product and converts failures into a *domain.ValidationError.
func ValidateProduct(product domain.Product) error {
	err := validate.Struct(product)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("product validation: %w", err)
	}

	ve := &domain.ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, domain.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	case tagStockZero:
		return "If the product is out of stock, stock quantity must be 0."
	case tagStockPositive:
		return "If the product is in stock or in replacement, stock quantity must be greater than 0."
	default:
		return fmt.Sprintf("Failed validation rule '%s'.", fe.Tag())
	}
}
