package domain

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate     *validator.Validate
	trans        ut.Translator
	validateOnce sync.Once
)

// Validator returns the shared validation engine, configured to report
// field names by their mapstructure tag.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, trans)
	})
	return validate
}

// ParseValidationError converts raw validation errors into a field -> message map
func ParseValidationError(err error) map[string]string {
	errMap := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errMap[e.Namespace()] = e.Translate(trans)
		}
		return errMap
	}

	errMap["_"] = err.Error()
	return errMap
}

// Validate checks a call-site descriptor before it is registered.
func (m *CacheMetadata) Validate() error {
	if err := Validator().Struct(m); err != nil {
		return InvalidMetadataError("invalid cache metadata for site "+m.Site, validationSummary(err))
	}
	return nil
}

func validationSummary(err error) error {
	msgs := ParseValidationError(err)
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, msg)
	}
	slices.Sort(parts)
	return errors.New(strings.Join(parts, "; "))
}
