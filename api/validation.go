package api

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/checkmarble/form-designer/models"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the designer tags to the validator used by gin binding, and makes the validation
// messages use the json names of the fields.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldNameFromTag)
		_ = v.RegisterValidation("device", func(fl validator.FieldLevel) bool {
			_, err := models.DeviceFromString(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("field_type", func(fl validator.FieldLevel) bool {
			_, err := models.FieldTypeFromString(fl.Field().String())
			return err == nil
		})
	})
}

func fieldNameFromTag(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name != "" {
		return name
	}
	return strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
}

// adaptFieldValidationError maps a validation error to a message safe to return to the client.
func adaptFieldValidationError(fe validator.FieldError) string {
	inner := func(fe validator.FieldError) string {
		switch fe.ActualTag() {
		case "required":
			return "is required"
		case "oneof":
			return fmt.Sprintf("must be one of %s", strings.Join(strings.Split(fe.Param(), " "), ", "))
		case "max":
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		case "excludesall":
			return fmt.Sprintf("must not contain any of %q", fe.Param())
		case "device":
			return fmt.Sprintf("must be a device (%s, %s)", models.DeviceDesktop, models.DeviceMobile)
		case "field_type":
			return "must be a known field type"
		}
		return "is invalid"
	}
	return fmt.Sprintf("field `%s` %s", fe.Field(), inner(fe))
}

func adaptUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	if err.Field != "" {
		return fmt.Sprintf("field `%s` expected type %s, got type %s", err.Field, err.Type.String(), err.Value)
	}
	return fmt.Sprintf("expected type %s, got type %s", err.Type.String(), err.Value)
}
