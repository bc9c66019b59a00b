package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutboxEventType(t *testing.T) {
	got, err := ParseOutboxEventType("manual_payment_received")
	require.NoError(t, err)
	assert.Equal(t, EventManualPaymentReceived, got)
	assert.True(t, got.IsValid())

	_, err = ParseOutboxEventType("order_created")
	require.Error(t, err)
}

func TestAggregateTypeIsValid(t *testing.T) {
	assert.True(t, AggregateUser.IsValid())
	assert.False(t, OutboxAggregateType("store").IsValid())
}
