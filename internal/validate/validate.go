package validate

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"

	"github.com/go-playground/validator/v10"
)

// One validator instance is shared by the relay handler and the settings
// service. Besides the built-in rules it knows two tags:
//
//	provider  the value names a supported model.Provider
//	theme     the value is one of model.Themes

var (
	instance *validator.Validate
	once     sync.Once
)

func getInstance() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		_ = instance.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
			return model.Provider(fl.Field().String()).Valid()
		})
		_ = instance.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
			return slices.Contains(model.Themes, model.Theme(fl.Field().String()))
		})
	})
	return instance
}

// Struct checks a payload against the rules in its `validate` tags.
// Failures are returned wrapped in app_errors.ErrValidation with a readable
// per-field message.
func Struct(payload interface{}) error {
	return wrap(getInstance().Struct(payload))
}

// Var checks a single value against tag, e.g. Var(theme, "theme").
func Var(value interface{}, tag string) error {
	return wrap(getInstance().Var(value, tag))
}

func wrap(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %s", app_errors.ErrValidation, err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		if fieldErr.Field() == "" {
			messages = append(messages, fmt.Sprintf("%v failed on the '%s' tag", fieldErr.Value(), fieldErr.Tag()))
			continue
		}
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", app_errors.ErrValidation, strings.Join(messages, "; "))
}
