package validation

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	customRules  = map[string]validator.Func{}
	rulesMu      sync.Mutex
)

// RegisterRule adds a custom validation tag to the shared validator
func RegisterRule(tag string, fn validator.Func) {
	rulesMu.Lock()
	defer rulesMu.Unlock()
	customRules[tag] = fn
	if validate != nil {
		_ = validate.RegisterValidation(tag, fn)
	}
}

// Validator returns the shared validator, also installed as gin's binding validator engine
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		rulesMu.Lock()
		defer rulesMu.Unlock()

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate = engine
		} else {
			validate = validator.New()
		}
		for tag, fn := range customRules {
			_ = validate.RegisterValidation(tag, fn)
		}
	})
	return validate
}

// ValidateStruct validates s and converts field errors into a ValidationError
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}
	return err
}
