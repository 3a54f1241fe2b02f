package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	StartTime string `validate:"required,hhmm"`
	EndTime   string `validate:"omitempty,hhmm"`
}

func TestHHMMRule(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	valid := []string{"00:00", "09:30", "12:45", "23:59"}
	for _, s := range valid {
		assert.NoError(t, v.Validate(&slotRequest{StartTime: s}), s)
	}

	invalid := []string{"24:00", "9:30", "12:60", "12-30", "noon", "12:3"}
	for _, s := range invalid {
		assert.Error(t, v.Validate(&slotRequest{StartTime: s}), s)
	}
}

func TestOmitemptySkipsBlankFields(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(&slotRequest{StartTime: "10:00"}))
	assert.Error(t, v.Validate(&slotRequest{StartTime: "10:00", EndTime: "bad"}))
}
