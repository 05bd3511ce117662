package validator

import (
	"keepsake/shared/base64"
	"keepsake/shared/constant"
	"keepsake/shared/failure"
	"reflect"
	"strconv"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// mediaTypeOf accepts a data URL or a bare media type.
func mediaTypeOf(value string) string {
	if strings.HasPrefix(value, "data:") {
		return base64.GetContentType(value)
	}

	mediaType, _, _ := strings.Cut(value, ";")

	return strings.ToLower(strings.TrimSpace(mediaType))
}

func registerMimePrefixValidation(field val.FieldLevel) bool {
	if field.Field().Kind() != reflect.String {
		return false
	}

	mediaType := mediaTypeOf(field.Field().String())
	if mediaType == "" {
		return false
	}

	return strings.HasPrefix(mediaType, field.Param())
}

func registerFileSizeValidation(field val.FieldLevel) bool {
	var size int64

	switch v := field.Field(); v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		size = v.Int()
	case reflect.String:
		size = int64(v.Len())
	default:
		return false
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return size <= int64(maxSizeMB*constant.BytesPerMB)
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	if err := validate.RegisterValidation("mimeprefix", registerMimePrefixValidation); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("maxfilesize", registerFileSizeValidation); err != nil {
		panic(err)
	}
}

// ValidateStruct runs the struct tags of data and reports the first failing
// field as a bad request.
// https://github.com/go-playground/validator
func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
