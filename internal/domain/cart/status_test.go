package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineStatus(t *testing.T) {
	for _, raw := range []string{"IN_CART", "PREPARED", "SHIPPED", "RECEIVED", "CANCELLED"} {
		s, err := ParseLineStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, LineStatus(raw), s)
	}

	_, err := ParseLineStatus("DELIVERED")
	assert.Error(t, err)

	_, err = ParseLineStatus("prepared")
	assert.Error(t, err)
}

func TestCanTransitionForwardOnly(t *testing.T) {
	assert.True(t, StatusInCart.CanTransitionTo(StatusPrepared))
	assert.True(t, StatusPrepared.CanTransitionTo(StatusShipped))
	assert.True(t, StatusShipped.CanTransitionTo(StatusReceived))
	assert.True(t, StatusInCart.CanTransitionTo(StatusReceived))

	assert.False(t, StatusShipped.CanTransitionTo(StatusPrepared))
	assert.False(t, StatusReceived.CanTransitionTo(StatusInCart))
}

func TestCanTransitionSameStatus(t *testing.T) {
	assert.True(t, StatusPrepared.CanTransitionTo(StatusPrepared))
}

func TestCancelledReachableFromAnywhere(t *testing.T) {
	for _, from := range []LineStatus{StatusInCart, StatusPrepared, StatusShipped, StatusReceived} {
		assert.True(t, from.CanTransitionTo(StatusCancelled), "from %s", from)
	}
}

func TestNoExitFromCancelled(t *testing.T) {
	for _, to := range []LineStatus{StatusInCart, StatusPrepared, StatusShipped, StatusReceived, StatusCancelled} {
		assert.False(t, StatusCancelled.CanTransitionTo(to), "to %s", to)
	}
}
