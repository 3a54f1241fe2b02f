package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("doctor", nil), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{CapacityExceeded("full"), http.StatusBadRequest},
		{InvalidAction("CANCEL"), http.StatusBadRequest},
		{SlotConflict("10:30"), http.StatusConflict},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{Internal(nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestSlotConflictCarriesSuggestion(t *testing.T) {
	err := SlotConflict("10:30")
	assert.Equal(t, "10:30", err.SuggestedSlot)
	assert.Contains(t, err.Message, "10:30")

	none := SlotConflictNoneLeft()
	assert.Empty(t, none.SuggestedSlot)
	assert.Equal(t, ErrSlotConflict, none.Code)
}

func TestAsAppErrorUnwrapsChains(t *testing.T) {
	inner := NotFound("appointment", nil)
	wrapped := fmt.Errorf("handling request: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound, appErr.Code)

	_, ok = AsAppError(fmt.Errorf("plain error"))
	assert.False(t, ok)
}
