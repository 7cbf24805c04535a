package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is the first failed rule of a request body.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// RequestValidator plugs validator/v10 into echo.Echo.Validator.
// A field may carry a `msg` tag with the text returned on failure.
type RequestValidator struct{ v *validator.Validate }

func NewValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(flexFloatValue, FlexFloat{})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg := tagMessage(reflect.TypeOf(i), fe.StructNamespace())
	if msg == "" {
		msg = fe.Field() + " failed " + fe.Tag() + " validation"
	}
	// namespace is "<type>.<json path>"
	field := fe.Namespace()
	if j := strings.IndexByte(field, '.'); j >= 0 {
		field = field[j+1:]
	}
	return &FieldError{Field: field, Message: msg}
}

func tagMessage(t reflect.Type, ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) < 2 {
		return ""
	}
	var sf reflect.StructField
	for _, p := range parts[1:] {
		if i := strings.IndexByte(p, '['); i >= 0 {
			p = p[:i]
		}
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return ""
		}
		f, ok := t.FieldByName(p)
		if !ok {
			return ""
		}
		sf, t = f, f.Type
	}
	return sf.Tag.Get("msg")
}
