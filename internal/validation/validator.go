package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json names, so the
// messages match what webhook senders put on the wire.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Describe turns a json decode error or a validation error into a short,
// human readable diagnostic.
func Describe(err error) string {
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve))
		for _, fe := range ve {
			parts = append(parts, describeField(fe))
		}
		return strings.Join(parts, "; ")
	}

	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		if te.Field == "" {
			return fmt.Sprintf("expected %s, got %s", kindName(te.Type), te.Value)
		}
		return fmt.Sprintf("field %s: expected %s, got %s", te.Field, kindName(te.Type), te.Value)
	}

	var se *json.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("malformed json at offset %d: %v", se.Offset, se)
	}
	return err.Error()
}

func describeField(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing field %s", fe.Field())
	default:
		return fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag())
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "non-negative integer"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	default:
		return t.String()
	}
}
