package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":    "{field} is required",
	"gt":          "{field} must be greater than {param}",
	"mimeprefix":  "{field} must be a {param}* media type",
	"maxfilesize": "{field} must be at most {param} MB",
}

// message renders the first field error that has a template. The field name
// comes from the json tag when there is one.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	for _, fieldErr := range fieldErrors {
		tmpl, ok := messages[fieldErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(tmpl)
	}

	return fieldErrors.Error()
}
