package validator

import (
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxEmailLength = 254

// NewReportValidationRules returns the tags used by the report endpoints.
func NewReportValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Tag:     "report_email",
			Check:   stringRule(isReportEmail),
			Message: "%s must be a valid email address",
		},
	}
}

func stringRule(check func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		return ok && check(val)
	}
}

// isReportEmail accepts a single bare address with a dotted domain.
// Display names ("Jane <jane@example.com>") are rejected.
func isReportEmail(val string) bool {
	val = strings.TrimSpace(val)
	if val == "" || len(val) > maxEmailLength {
		return false
	}

	addr, err := mail.ParseAddress(val)
	if err != nil || addr.Address != val {
		return false
	}

	_, domain, _ := strings.Cut(addr.Address, "@")
	return strings.Contains(domain, ".")
}
