package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationRule binds a struct tag to its check and to the message
// reported when a field fails it. Message is a format taking the field name.
type ValidationRule struct {
	Tag     string
	Check   validator.Func
	Message string
}

// Validator checks request bodies against their `validate` tags and turns
// failures into a single *ErrInvalidField naming the offending json fields.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &Validator{
		validate: v,
		messages: map[string]string{
			"required": "%s is required",
		},
	}
}

// Register installs rules. Registering a known tag again replaces it.
func (v *Validator) Register(rules ...ValidationRule) {
	for _, r := range rules {
		if err := v.validate.RegisterValidation(r.Tag, r.Check); err != nil {
			panic(fmt.Sprintf("registering validation rule %q: %v", r.Tag, err))
		}
		if r.Message != "" {
			v.messages[r.Tag] = r.Message
		}
	}
}

func (v *Validator) Struct(s any) error {
	return v.translate(v.validate.Struct(s))
}

func (v *Validator) Var(field any, tag string) error {
	return v.translate(v.validate.Var(field, tag))
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}
