package middleware

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number or numeric string. null and "" leave it
// unset, which validator rules see as a missing value. Anything else that
// is not a finite number sets Malformed instead of failing the decode, so
// the field's own validation message is reported.
type FlexFloat struct {
	Val       float64
	Valid     bool
	Malformed bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.Malformed = true
		return nil
	}
	f.Val, f.Valid = v, true
	return nil
}

// Ptr returns nil when unset.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Val
	return &v
}

// flexFloatValue hands validator a *float64 so that "required" accepts 0.
func flexFloatValue(field reflect.Value) any {
	if f, ok := field.Interface().(FlexFloat); ok {
		return f.Ptr()
	}
	return (*float64)(nil)
}
