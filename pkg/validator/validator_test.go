package validator

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/pkg/errors"
)

type day struct {
	value string
}

func (d day) Value() (driver.Value, error) {
	if d.value == "" {
		return nil, nil
	}
	return d.value, nil
}

type sample struct {
	Name   string `json:"name" validate:"required,max=5"`
	Phone  string `json:"phonenumber" validate:"required,e164"`
	Kind   string `json:"kind" validate:"omitempty,oneof=pdf image"`
	Birth  day    `json:"birth" validate:"required"`
	Hidden string `json:"-" validate:"max=1"`
}

func TestValidateReportsFieldErrors(t *testing.T) {
	v := New(day{})

	err := v.Validate(&sample{Name: "toolong", Phone: "555", Kind: "doc", Hidden: "xx"})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)

	byField := map[string]string{}
	for _, f := range appErr.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "must be at most 5 characters", byField["name"])
	assert.Equal(t, "must be a phone number in E.164 format", byField["phonenumber"])
	assert.Equal(t, "must be one of: pdf, image", byField["kind"])
	assert.Equal(t, "this field is required", byField["birth"])
	assert.Contains(t, byField, "Hidden")
}

func TestValidateAccepts(t *testing.T) {
	v := New(day{})
	assert.NoError(t, v.Validate(&sample{Name: "Ann", Phone: "+15551234567", Birth: day{"2000-01-01"}}))
}
