package session

import (
	"github.com/bwmarrin/discordgo"
)

// Intents the bot needs: member joins and role changes, guild messages with
// their content, and component interactions (delivered without an intent).
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent

// NewSession creates a new Discord session
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = Intents
	// Member tracking keeps the pre-update member around so role grants can
	// be diffed.
	session.StateEnabled = true
	session.State.TrackMembers = true
	session.State.TrackRoles = true
	session.State.TrackChannels = true

	return session, nil
}
