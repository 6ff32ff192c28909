package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"userapp/internal/core/domain"
	"userapp/internal/core/port"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// report fields by their form name so messages match what was submitted
	Validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]

		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	locale := fr.New()
	uni := ut.New(locale, locale)

	var found bool
	Translator, found = uni.GetTranslator("fr")

	if !found {
		panic("translator fr not found")
	}

	if err := fr_translations.RegisterDefaultTranslations(Validate, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validate.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} est obligatoire", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})

	Validate.RegisterTranslation("email", Translator, func(ut ut.Translator) error {
		return ut.Add("email", "Votre email n'est pas valide", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("email")
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"name":   "Nom",
		"email":  "Email",
		"userId": "Identifiant",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

type StructValidator struct{}

func NewValidator() port.Validator {
	return &StructValidator{}
}

// ValidateStruct reports every broken constraint of s as a *domain.ValidationError.
func (v *StructValidator) ValidateStruct(s any) error {
	err := Validate.Struct(s)

	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors

	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]domain.FieldError, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		fields = append(fields, domain.FieldError{
			Field:   fieldError.Field(),
			Message: fieldError.Translate(Translator),
		})
	}

	return domain.NewValidationError(fields...)
}
