package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/checkcheck/backend/core/datetime"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	fidTag  = "fid"
	fidText = "fingerprint id must be numeric"

	stdNumTag   = "stdnum"
	stdNumText  = "student number must be 3 or 4 digits"
	stdNumRegex = regexp.MustCompile(`^\d{3,4}$`)

	isoDateTag  = "isodate"
	isoDateText = "must be a date formatted as YYYY-MM-DD"

	timestampTag  = "timestamp"
	timestampText = "must be a timestamp formatted as YYYY-MM-DD HH:MM:SS"

	requiredTag  = "required"
	requiredText = "this field is required"
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, notBlankText)
	_ = Validate.RegisterValidation(fidTag, fidValidation)
	RegisterCustomTranslation(fidTag, fidText)
	_ = Validate.RegisterValidation(stdNumTag, stdNumValidation)
	RegisterCustomTranslation(stdNumTag, stdNumText)
	_ = Validate.RegisterValidation(isoDateTag, isoDateValidation)
	RegisterCustomTranslation(isoDateTag, isoDateText)
	_ = Validate.RegisterValidation(timestampTag, timestampValidation)
	RegisterCustomTranslation(timestampTag, timestampText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateErrors maps validator errors to {field: message}.
func TranslateErrors(errs validator.ValidationErrors) map[string]string {
	fldErrs := make(map[string]string, len(errs))
	for _, vErr := range errs {
		fldErrs[vErr.Field()] = vErr.Translate(Translator)
	}
	return fldErrs
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// fidValidation accepts unsigned integers only, unlike the builtin numeric tag.
func fidValidation(fl validator.FieldLevel) bool {
	return IsDigits(fl.Field().String())
}

func stdNumValidation(fl validator.FieldLevel) bool {
	return stdNumRegex.MatchString(fl.Field().String())
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := datetime.ParseDate(fl.Field().String())
	return err == nil
}

func timestampValidation(fl validator.FieldLevel) bool {
	_, err := datetime.ParseTimestamp(fl.Field().String())
	return err == nil
}
