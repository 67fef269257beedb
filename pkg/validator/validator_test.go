package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemPayload struct {
	Name     string `validate:"required,max=200"`
	Have     int    `validate:"gte=0"`
	Want     int    `validate:"gte=0"`
	Provider string `validate:"omitempty,oneof=prisguiden prisjakt finn"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(addItemPayload{Name: "Dinner plate", Have: 2, Want: 6, Provider: "prisjakt"})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(addItemPayload{Have: 1, Want: 2})

	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Name")
	assert.Equal(t, "is required", valErr.Fields()["Name"])
}

func TestValidate_NegativeQuantity(t *testing.T) {
	err := Validate(addItemPayload{Name: "Cup", Have: -1, Want: 0})

	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Have"], "greater than or equal to 0")
}

func TestValidate_UnknownProvider(t *testing.T) {
	err := Validate(addItemPayload{Name: "Cup", Provider: "ebay"})

	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Provider"], "must be one of")
}

func TestValidationError_ErrorJoinsFields(t *testing.T) {
	err := Validate(addItemPayload{Have: -2})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "field 'Have'")
}
