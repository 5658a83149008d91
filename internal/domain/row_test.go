package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_MarshalKeepsColumnOrder(t *testing.T) {
	r := NewRow(3)
	r.Set("zeta", int64(1))
	r.Set("alpha", "a")
	r.Set("mid", nil)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":null}`, string(b))
}

func TestRow_SetReplacesInPlace(t *testing.T) {
	r := NewRow(2)
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, r.Columns())
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, r.Len())
}

func TestRow_EmptyMarshal(t *testing.T) {
	b, err := json.Marshal(NewRow(0))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}
