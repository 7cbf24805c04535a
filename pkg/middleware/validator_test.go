package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Lat FlexFloat `json:"lat" validate:"required,gte=-90,lte=90" msg:"Valid latitude is required"`
}

type place struct {
	Name  string `json:"name" validate:"required" msg:"Name is required"`
	Point point  `json:"point"`
	Kind  string `json:"kind" validate:"oneof=farm village"`
}

func decode(t *testing.T, body string) *place {
	t.Helper()
	var p place
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func TestValidator_FirstErrorWithMessage(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(decode(t, `{"name":"Uruli","point":{"lat":"0"},"kind":"farm"}`)))

	err := v.Validate(decode(t, `{"name":"Uruli","point":{"lat":null},"kind":"farm"}`))
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "point.lat", fe.Field)
	assert.Equal(t, "Valid latitude is required", fe.Message)

	err = v.Validate(decode(t, `{"name":"Uruli","point":{"lat":91},"kind":"farm"}`))
	assert.EqualError(t, err, "Valid latitude is required")

	err = v.Validate(decode(t, `{"name":"","point":{"lat":1},"kind":"farm"}`))
	assert.EqualError(t, err, "Name is required")

	err = v.Validate(decode(t, `{"name":"x","point":{"lat":1},"kind":"city"}`))
	assert.EqualError(t, err, "kind failed oneof validation")
}

func TestFlexFloat(t *testing.T) {
	var f FlexFloat
	require.NoError(t, json.Unmarshal([]byte(`" 12.5 "`), &f))
	assert.Equal(t, FlexFloat{Val: 12.5, Valid: true}, f)
	require.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.Nil(t, f.Ptr())
	assert.False(t, f.Malformed)

	for _, raw := range []string{`"abc"`, `"NaN"`, `true`, `{}`, `[1]`} {
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.True(t, f.Malformed, raw)
		assert.False(t, f.Valid, raw)
		assert.Nil(t, f.Ptr(), raw)
	}
}

func TestValidate_MalformedFlexFloatFailsRequired(t *testing.T) {
	v := NewValidator()
	var p point
	require.NoError(t, json.Unmarshal([]byte(`{"lat":"north"}`), &p))
	assert.EqualError(t, v.Validate(&p), "Valid latitude is required")
}
