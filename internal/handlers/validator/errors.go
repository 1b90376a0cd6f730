package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrInvalidField struct {
	error
}

func NewErrInvalidField(format string, args ...any) *ErrInvalidField {
	return &ErrInvalidField{fmt.Errorf(format, args...)}
}

// translate folds validator errors into one readable *ErrInvalidField.
// Anything else passes through untouched, nil included.
func (v *Validator) translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		format, ok := v.messages[fe.Tag()]
		if !ok {
			format = "%s is invalid"
		}
		field := fe.Field()
		if field == "" {
			field = "value"
		}
		parts = append(parts, fmt.Sprintf(format, field))
	}
	return NewErrInvalidField("%s", strings.Join(parts, ", "))
}
