package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError_Unwrap(t *testing.T) {
	driverErr := errors.New("Error 1054: Unknown column")
	err := fmt.Errorf("add column: %w", ErrStore(driverErr, "Failed to add column."))

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Failed to add column.", se.Message)
	assert.ErrorIs(t, err, driverErr)
	assert.Equal(t, "Failed to add column.: Error 1054: Unknown column", se.Error())
}

func TestErrorConstructors(t *testing.T) {
	assert.Equal(t, "Column `a` already exists in table `t`.", ErrConflict("Column `%s` already exists in table `%s`.", "a", "t").Error())
	assert.Equal(t, "Unsafe type conversion from `INT` to `DATE`.", ErrPolicy("Unsafe type conversion from `%s` to `%s`.", "INT", "DATE").Error())
	assert.Equal(t, "Invalid column name.", ErrValidation("Invalid column name.").Error())
	assert.Equal(t, "Record to update not found.", ErrNotFound("Record to update not found.").Error())
}

func TestDeleteRowsRequest_EffectiveLimit(t *testing.T) {
	assert.Equal(t, 100, DeleteRowsRequest{}.EffectiveLimit())
	five := 5
	assert.Equal(t, 5, DeleteRowsRequest{Limit: &five}.EffectiveLimit())
	big := 500
	assert.Equal(t, 100, DeleteRowsRequest{Limit: &big}.EffectiveLimit())
}
