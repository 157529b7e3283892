package events

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// restLookup fetches what the state cache does not hold.
type restLookup interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// Resolver answers channel and role ownership questions from the session
// state, falling back to the REST API.
type Resolver struct {
	state *discordgo.State
	rest  restLookup
}

// NewResolver creates a resolver backed by the session.
func NewResolver(s *discordgo.Session) *Resolver {
	return &Resolver{state: s.State, rest: s}
}

// Channel returns the channel's name if it belongs to the server.
func (r *Resolver) Channel(serverID int64, channelID string) (string, bool) {
	guildID := strconv.FormatInt(serverID, 10)
	var ch *discordgo.Channel
	if r.state != nil {
		ch, _ = r.state.Channel(channelID)
	}
	if ch == nil {
		var err error
		if ch, err = r.rest.Channel(channelID); err != nil {
			return "", false
		}
	}
	if ch.GuildID != guildID {
		return "", false
	}
	return ch.Name, true
}

// Role returns the role's name if it belongs to the server.
func (r *Resolver) Role(serverID int64, roleID string) (string, bool) {
	guildID := strconv.FormatInt(serverID, 10)
	if r.state != nil {
		if role, err := r.state.Role(guildID, roleID); err == nil {
			return role.Name, true
		}
	}
	roles, err := r.rest.GuildRoles(guildID)
	if err != nil {
		return "", false
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role.Name, true
		}
	}
	return "", false
}
