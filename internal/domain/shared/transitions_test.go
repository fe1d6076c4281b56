package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lightStatus string

const (
	lightRed    lightStatus = "RED"
	lightGreen  lightStatus = "GREEN"
	lightYellow lightStatus = "YELLOW"
	lightOff    lightStatus = "OFF"
)

var lightTransitions = Transitions[lightStatus]{
	lightRed:    {lightGreen, lightOff},
	lightGreen:  {lightYellow},
	lightYellow: {lightRed},
}

func TestTransitions_Allows(t *testing.T) {
	tests := []struct {
		from, to lightStatus
		allowed  bool
	}{
		{lightRed, lightGreen, true},
		{lightRed, lightOff, true},
		{lightRed, lightYellow, false},
		{lightGreen, lightYellow, true},
		{lightGreen, lightRed, false},
		{lightOff, lightRed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, lightTransitions.Allows(tt.from, tt.to))
		})
	}
}

func TestTransitions_IsTerminal(t *testing.T) {
	assert.True(t, lightTransitions.IsTerminal(lightOff))
	assert.False(t, lightTransitions.IsTerminal(lightRed))
}

func TestTransitions_Guard(t *testing.T) {
	require.NoError(t, lightTransitions.Guard("light", lightRed, lightGreen))

	err := lightTransitions.Guard("light", lightOff, lightRed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Contains(t, err.Error(), "light cannot transition from OFF to RED")
}
