package dbtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONValue(t *testing.T) {
	v, err := JSON(`{"a":1}`).Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	v, err = JSON(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "null", v)

	_, err = JSON(`{broken`).Value()
	require.Error(t, err)
}

func TestJSONScan(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`[1,2]`)))
	assert.Equal(t, `[1,2]`, string(j))

	require.NoError(t, j.Scan(`{"b":true}`))
	assert.Equal(t, `{"b":true}`, string(j))

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	require.Error(t, j.Scan(42))
}
