package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValidator(t *testing.T) {
	type form struct {
		Medicine string `validate:"required,max=3"`
		Dosage   string `validate:"required"`
	}
	v := validator.New()

	err := FromValidator(v.Struct(form{Medicine: "ééé", Dosage: "1"}))
	assert.NoError(t, err)

	appErr, ok := As(FromValidator(v.Struct(form{Medicine: "éééé"})))
	require.True(t, ok)
	assert.Equal(t, ErrValidation, appErr.Code)
	assert.Equal(t, map[string]string{
		"Medicine": "must be at most 3",
		"Dosage":   "is required",
	}, appErr.Fields)

	appErr, ok = As(FromValidator(fmt.Errorf("unexpected EOF")))
	require.True(t, ok)
	assert.Equal(t, ErrBadRequest, appErr.Code)
}
