package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errInvalidRequest = &domain.Error{Kind: domain.KindValidation, Message: "invalid request"}

// ValidationError lists the request fields that failed validation, keyed by
// JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

// Unwrap makes a ValidationError carry the VALIDATION_ERROR kind.
func (e *ValidationError) Unwrap() error { return errInvalidRequest }

// Validate runs the struct's validate tags.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return &ValidationError{Fields: fields}
}

// ParseAmount converts a JSON amount into integer minor units. Fractions
// are rejected rather than rounded.
func ParseAmount(d decimal.Decimal) (int64, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: amount must be a whole number of minor units", domain.ErrInvalidAmount)
	}
	if d.Sign() <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if d.GreaterThan(decimal.NewFromInt(domain.MaxAmount)) {
		return 0, fmt.Errorf("%w: maximum amount is %d", domain.ErrAmountTooLarge, domain.MaxAmount)
	}
	return d.IntPart(), nil
}
