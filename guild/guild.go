// Package guild defines the per-server configuration document: the named
// messages a server can send, the buttons linking them together and the role
// triggers that pick a message when a member is granted roles.
package guild

import "strconv"

// Unset is the sentinel stored in id fields that have not been configured.
const Unset int64 = -1

// WelcomeMessage is the message name the join handler sends by convention.
const WelcomeMessage = "welcome"

// Button links a message to another message by name. Targets are not checked
// when written and may dangle.
type Button struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Message is a content template plus its ordered buttons.
type Message struct {
	Content string   `json:"content"`
	Buttons []Button `json:"buttons"`
}

// RoleTrigger names the message sent when its role is newly granted.
type RoleTrigger struct {
	MessageID string `json:"message_id"`
	Priority  int    `json:"priority"`
}

// ServerConfig is the whole persisted document for one server.
type ServerConfig struct {
	ServerID          int64        `json:"server_id"`
	WelcomeChannelID  int64        `json:"welcome_channel_id"`
	WelcomeRoleID     int64        `json:"welcome_role_id"` // legacy, kept for document compatibility
	SendWelcomeOnJoin bool         `json:"send_welcome_on_join"`
	Messages          MessageSet   `json:"messages"`
	RoleTriggers      RoleTriggers `json:"role_triggers"`
}

// NewServerConfig returns an empty configuration for serverID.
func NewServerConfig(serverID int64) *ServerConfig {
	return &ServerConfig{
		ServerID:         serverID,
		WelcomeChannelID: Unset,
		WelcomeRoleID:    Unset,
		Messages:         NewMessageSet(),
		RoleTriggers:     make(RoleTriggers),
	}
}

// Clone returns a deep copy that shares no mutable state with c.
func (c *ServerConfig) Clone() *ServerConfig {
	out := *c
	out.Messages = c.Messages.clone()
	out.RoleTriggers = make(RoleTriggers, len(c.RoleTriggers))
	for id, t := range c.RoleTriggers {
		out.RoleTriggers[id] = t
	}
	return &out
}

// Key is the storage key for the document.
func (c *ServerConfig) Key() string {
	return strconv.FormatInt(c.ServerID, 10)
}
