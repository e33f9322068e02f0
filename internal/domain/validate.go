package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate потокобезопасен и кэширует разбор тегов, поэтому один экземпляр на пакет.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	mustRegister(v, "orderstate", func(fl validator.FieldLevel) bool {
		return OrderState(fl.Field().String()).Valid()
	})
	mustRegister(v, "phone9", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().Int())
	})
	mustRegister(v, "pickupdatetime", func(fl validator.FieldLevel) bool {
		return ValidPickup(fl.Field().String())
	})
	mustRegister(v, "money", func(fl validator.FieldLevel) bool {
		x := fl.Field().Float()
		return finite(x) && x >= 0
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateStruct прогоняет теги validate и переводит нарушения в доменные ошибки.
func validateStruct(entity any, fieldErrors map[string]error) []error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{fmt.Errorf("%w: %v", ErrValidation, err)}
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if mapped, ok := fieldErrors[fe.StructField()]; ok {
			errs = append(errs, mapped)
			continue
		}
		errs = append(errs, fmt.Errorf("%w: field %s failed %q", ErrValidation, fe.StructField(), fe.Tag()))
	}
	return errs
}

// ValidationError объединяет нарушения инвариантов одной сущности.
type ValidationError struct {
	Entity     string
	Violations []error
}

// NewValidationError возвращает nil, если нарушений нет.
func NewValidationError(entity string, violations []error) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Entity: entity, Violations: violations}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Entity, errors.Join(e.Violations...))
}

// Unwrap позволяет проверять как общий ErrValidation, так и конкретные нарушения через errors.Is.
func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrValidation}, e.Violations...)
}
