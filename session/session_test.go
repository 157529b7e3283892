package session

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s, err := NewSession("token")

	require.NoError(t, err)
	assert.Equal(t, "Bot token", s.Token)
	assert.Equal(t, Intents, s.Identify.Intents)
	assert.NotZero(t, s.Identify.Intents&discordgo.IntentsGuildMembers)
	assert.True(t, s.State.TrackMembers)
}
