package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldLabels names form fields the way the pages label them.
var fieldLabels = map[string]string{
	"Name":        "Full name",
	"Email":       "Email",
	"Password":    "Password",
	"Title":       "Title",
	"Category":    "Category",
	"Description": "Description",
	"Price":       "Price",
	"Message":     "Message",
}

// formValidator wraps go-playground/validator so Echo can call c.Validate(form).
type formValidator struct {
	v *validator.Validate
}

// NewValidator returns a validator ready to be assigned to echo.Echo.Validator.
func NewValidator() *formValidator {
	return &formValidator{v: validator.New()}
}

// Validate satisfies echo.Validator. All failing fields are reported in one
// message, in form order.
func (fv *formValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, " "))
}

func fieldError(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "numeric":
		return label + " must be a number."
	case "oneof":
		return fmt.Sprintf("%s must be one of %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
