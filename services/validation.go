package services

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/meinhoongagan/homeservice/models"
)

const (
	MaxCertificateSize = 5 << 20
	specialChars       = `!@#$%^&*(),.?":{}|<>`
)

var (
	phonePattern          = regexp.MustCompile(`^\d{10}$`)
	certificateExtensions = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}
	validate              = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	})
	return v
}

// NormalizeEmail trims and lower-cases an email. It is idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func strongPassword(pw string) bool {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// validateStruct runs the struct tags and returns one message per failing field.
func validateStruct(i any) *ValidationError {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return invalidField("_", err.Error())
	}
	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "phone":
		return "phone number must be exactly 10 digits"
	case "strongpassword":
		return "password must contain an uppercase letter, a lowercase letter, a digit and one of " + specialChars
	case "eqfield":
		return "passwords do not match"
	case "category":
		return fmt.Sprintf("%q is not a valid service category", fe.Value())
	case "datetime":
		return "use the HH:MM format"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

// CertificateFile is one uploaded certificate as received from the client.
type CertificateFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func checkCertificate(f CertificateFile) string {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !certificateExtensions[ext] {
		return fmt.Sprintf("%s: only PDF, JPG, JPEG and PNG files are allowed", f.Name)
	}
	if f.Size <= 0 {
		return fmt.Sprintf("%s: file is empty", f.Name)
	}
	if f.Size > MaxCertificateSize {
		return fmt.Sprintf("%s: file must be 5MB or smaller", f.Name)
	}
	return ""
}
