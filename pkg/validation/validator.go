package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of dates of birth.
const DateLayout = "2006-01-02"

// MinimumAge is the youngest age accepted at registration.
const MinimumAge = 13

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// Init configures the global validator used by Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs the JSON tag name func, custom validations and aliases on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		dob, err := time.Parse(DateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return IsOldEnough(dob, time.Now(), MinimumAge)
	})

	v.RegisterAlias("pwd", "min=8,max=30,containsany=abcdefghijklmnopqrstuvwxyz,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=0123456789")
	v.RegisterAlias("confirmcode", "len=6,alphanum,uppercase")
	v.RegisterAlias("gender", "oneof=male female")
}

// IsOldEnough reports whether someone born on dob is at least years old at now.
func IsOldEnough(dob, now time.Time, years int) bool {
	if dob.After(now) {
		return false
	}
	return !dob.AddDate(years, 0, 0).After(now)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "uppercase":
		return "must be in uppercase"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "datetime":
		return "must match datetime format: " + param

	// ===== CUSTOM =====
	case "username":
		return "must be 3-20 characters of letters, digits or underscore"
	case "pwd":
		return "must be 8-30 characters with an uppercase letter, a lowercase letter and a digit"
	case "confirmcode":
		return "must be 6 uppercase letters or digits"
	case "gender":
		return "must be one of: male, female"
	case "adult":
		return fmt.Sprintf("must be a %s date at least %d years ago", "YYYY-MM-DD", MinimumAge)

	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
