// Package navigator renders messages from a server's message graph and
// follows button activations to their targets.
//
// Activation is stateless: every press renders the target again, so a button
// pointing back at its own message, or a longer loop, can be followed
// forever. There is no cycle detection or depth limit.
package navigator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/EasterCompany/dex-welcome-service/guild"
)

// UserPlaceholder is replaced by a mention of the addressed user.
const UserPlaceholder = "<user>"

// MaxContentRunes is Discord's limit on message content.
const MaxContentRunes = 2000

// maxMentionRunes is the length of "<@id>" for the longest snowflake.
const maxMentionRunes = len("<@>") + 20

// ButtonDescriptor is a rendered button. Handle is what the transport hands
// back on activation.
type ButtonDescriptor struct {
	Label  string
	Target string
	Handle string
}

// Rendered is a message ready for delivery.
type Rendered struct {
	Name    string
	Content string
	Buttons []ButtonDescriptor
}

// Source exposes the published configuration of a server.
type Source interface {
	Snapshot(serverID int64) (*guild.ServerConfig, bool)
}

// Navigator renders messages from the configurations in a Source.
type Navigator struct {
	source Source
}

// New creates a Navigator reading from source.
func New(source Source) *Navigator {
	return &Navigator{source: source}
}

// Render builds the named message for a server. The placeholder is only
// substituted when addressedUserID is set.
func (n *Navigator) Render(serverID int64, name, addressedUserID string) (*Rendered, error) {
	cfg, ok := n.source.Snapshot(serverID)
	if !ok {
		return nil, guild.ErrServerNotConfigured
	}
	msg, ok := cfg.Messages.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", guild.ErrMessageNotFound, name)
	}

	out := &Rendered{
		Name:    name,
		Content: Substitute(msg.Content, addressedUserID),
		Buttons: make([]ButtonDescriptor, 0, len(msg.Buttons)),
	}
	for i, b := range msg.Buttons {
		out.Buttons = append(out.Buttons, ButtonDescriptor{
			Label:  b.Label,
			Target: b.Target,
			Handle: EncodeHandle(serverID, i, b.Target),
		})
	}
	return out, nil
}

// Activate renders the target of a pressed button for the user who pressed
// it. The server is the one the handle was issued for.
func (n *Navigator) Activate(customID, userID string) (*Rendered, error) {
	h, err := DecodeHandle(customID)
	if err != nil {
		return nil, err
	}
	return n.Render(h.ServerID, h.Target, userID)
}

// Substitute replaces every placeholder in content with a mention of userID
// in a single pass. Nothing is replaced when userID is empty.
func Substitute(content, userID string) string {
	if userID == "" {
		return content
	}
	return strings.ReplaceAll(content, UserPlaceholder, "<@"+userID+">")
}

// RenderedLength is the longest content can become once every placeholder
// is replaced by a mention.
func RenderedLength(content string) int {
	return utf8.RuneCountInString(content) + strings.Count(content, UserPlaceholder)*(maxMentionRunes-len(UserPlaceholder))
}
