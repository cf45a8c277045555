package api

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingErrorFieldDetails(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
		Pct  int    `validate:"min=0,max=100"`
	}

	err := validator.New().Struct(payload{Pct: 150})
	require.Error(t, err)

	resp := BindingError(err)
	assert.Equal(t, "validation failed", resp.Error)

	details, ok := resp.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, details, 2)
	assert.Equal(t, "Name", details[0].Field)
	assert.Equal(t, "Name is required", details[0].Message)
	assert.Equal(t, "Pct must be at most 100", details[1].Message)
}

func TestBindingErrorPassthrough(t *testing.T) {
	resp := BindingError(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", resp.Error)
	assert.Nil(t, resp.Details)
}
