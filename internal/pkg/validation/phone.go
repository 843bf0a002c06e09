package validation

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

const (
	defaultRegion  = "US"
	minPhoneDigits = 10
)

// NormalizePhone returns phone in E.164 form, or "" if it cannot be parsed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if countDigits(phone) < minPhoneDigits {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Register installs the custom binding tags on gin's validator engine.
// It is safe to call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return NormalizePhone(fl.Field().String()) != ""
	})
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
