package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Setenv("SF_TEST_VALUE", "  hello ")
	assert.Equal(t, "hello", Get("SF_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", Get("SF_TEST_MISSING", "fallback"))
}

func TestBool(t *testing.T) {
	t.Setenv("SF_TEST_BOOL", "true")
	assert.True(t, Bool("SF_TEST_BOOL", false))

	t.Setenv("SF_TEST_BOOL", "nope")
	assert.True(t, Bool("SF_TEST_BOOL", true))
	assert.False(t, Bool("SF_TEST_BOOL_MISSING", false))
}
