// Package commands implements the administrator text commands that edit a
// server's message graph and role triggers.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/EasterCompany/dex-welcome-service/navigator"
	"github.com/EasterCompany/dex-welcome-service/state"
	"github.com/EasterCompany/dex-welcome-service/utils"
)

// Outcomes recorded per command.
const (
	outcomeOK               = "ok"
	outcomeUsage            = "usage"
	outcomeNotConfigured    = "not_configured"
	outcomeNotFound         = "not_found"
	outcomeInvalidReference = "invalid_reference"
	outcomeExists           = "exists"
	outcomeTooLong          = "too_long"
	outcomePersistence      = "persistence_failure"
	outcomeError            = "error"
)

const (
	replyNotConfigured = "Server config not found. Use `!init` first."
	replySaveFailed    = "Failed to save server config, nothing was changed. Please try again."
)

// Registry is the table of loaded server configurations.
type Registry interface {
	Snapshot(serverID int64) (*guild.ServerConfig, bool)
	Init(ctx context.Context, serverID int64) (*guild.ServerConfig, error)
	Update(ctx context.Context, serverID int64, fn func(*guild.ServerConfig) error) (*guild.ServerConfig, error)
}

// Renderer renders a message from the graph.
type Renderer interface {
	Render(serverID int64, name, addressedUserID string) (*navigator.Rendered, error)
}

// Invocation is a command message from an administrator.
type Invocation struct {
	ServerID  int64
	ChannelID string
	UserID    string
	Content   string
}

// Reply is what the bot answers with: plain text, or a rendered message.
type Reply struct {
	Text   string
	Render *navigator.Rendered
}

func textReply(text string) *Reply {
	return &Reply{Text: text}
}

type command struct {
	minArgs int
	usage   string
	run     func(ctx context.Context, inv Invocation, args arguments) (*Reply, string)
}

// Handler dispatches commands.
type Handler struct {
	registry Registry
	renderer Renderer
	resolver Resolver
	prefix   string
	logger   *slog.Logger
	commands map[string]command
}

// NewHandler creates a new command handler
func NewHandler(registry Registry, renderer Renderer, resolver Resolver, prefix string, logger *slog.Logger) *Handler {
	h := &Handler{
		registry: registry,
		renderer: renderer,
		resolver: resolver,
		prefix:   prefix,
		logger:   logger,
	}
	h.commands = map[string]command{
		"help":                 {run: h.handleHelp},
		"init":                 {run: h.handleInit},
		"setwelcomechannel":    {minArgs: 1, usage: "!setwelcomechannel <channel_id>", run: h.handleSetWelcomeChannel},
		"setwelcomerole":       {minArgs: 1, usage: "!setwelcomerole <role_id|-1>", run: h.handleSetWelcomeRole},
		"welcomeonjoinenabled": {minArgs: 1, usage: "!welcomeonjoinenabled <true|false>", run: h.handleWelcomeOnJoin},
		"setmessage":           {minArgs: 2, usage: "!setmessage <message_id> <message>", run: h.handleSetMessage},
		"setbutton":            {minArgs: 3, usage: "!setbutton <message_id> <target_message_id> <button_label>", run: h.handleSetButton},
		"addbutton":            {minArgs: 3, usage: "!addbutton <message_id> <target_message_id> <button_label>", run: h.handleSetButton},
		"deletemessage":        {minArgs: 1, usage: "!deletemessage <message_id>", run: h.handleDeleteMessage},
		"deletebutton":         {minArgs: 2, usage: "!deletebutton <message_id> <button_label>", run: h.handleDeleteButton},
		"listmessages":         {run: h.handleListMessages},
		"sendmessage":          {minArgs: 1, usage: "!sendmessage <message_id>", run: h.handleSendMessage},
		"addroletrigger":       {minArgs: 3, usage: "!addroletrigger <role_id> <message_id> <priority>", run: h.handleAddRoleTrigger},
		"deleteroletrigger":    {minArgs: 1, usage: "!deleteroletrigger <role_id>", run: h.handleDeleteRoleTrigger},
		"listroletriggers":     {run: h.handleListRoleTriggers},
	}
	return h
}

// Dispatch runs the command in inv and returns the reply. It returns nil for
// text that is not a known command, which gets no reply at all.
func (h *Handler) Dispatch(ctx context.Context, inv Invocation) *Reply {
	if !strings.HasPrefix(inv.Content, h.prefix) {
		return nil
	}
	line := strings.TrimPrefix(inv.Content, h.prefix)
	if line == "" || unicode.IsSpace(rune(line[0])) {
		return nil
	}
	args := parseArguments(line)
	verb := args.fields[0]
	cmd, ok := h.commands[verb]
	if !ok {
		return nil
	}

	logger := h.logger.With("verb", verb, "server_id", inv.ServerID, "user_id", inv.UserID)
	if args.count() < cmd.minArgs {
		utils.IncrementCommands(verb, outcomeUsage)
		logger.DebugContext(ctx, "command arity error", "args", args.count())
		return textReply("Usage: " + cmd.usage)
	}

	reply, outcome := cmd.run(ctx, inv, args)
	utils.IncrementCommands(verb, outcome)
	logger.InfoContext(ctx, "command handled", "outcome", outcome)
	return reply
}

// failure maps errors shared by every mutating command to a reply.
func (h *Handler) failure(ctx context.Context, inv Invocation, err error) (*Reply, string) {
	switch {
	case errors.Is(err, guild.ErrServerNotConfigured):
		return textReply(replyNotConfigured), outcomeNotConfigured
	case errors.Is(err, state.ErrPersistence):
		utils.IncrementPersistenceFailures()
		h.logger.ErrorContext(ctx, "failed to persist server config", "server_id", inv.ServerID, "error", err)
		return textReply(replySaveFailed), outcomePersistence
	default:
		h.logger.ErrorContext(ctx, "command failed", "server_id", inv.ServerID, "error", err)
		return textReply("Something went wrong, nothing was changed."), outcomeError
	}
}

// handleHelp shows available commands
func (h *Handler) handleHelp(context.Context, Invocation, arguments) (*Reply, string) {
	help := "**Available Commands:**\n" +
		"`!init` - Initialize server config (only if not already initialized).\n" +
		"`!setwelcomechannel <channel_id>` - Set the welcome channel.\n" +
		"`!setwelcomerole <role_id|-1>` - Set the legacy welcome role, or clear it with -1.\n" +
		"`!welcomeonjoinenabled <true|false>` - Send the `welcome` message when a member joins.\n" +
		"`!setmessage <message_id> <message>` - Set a message. Use `<user>` to mention the user it is sent to.\n" +
		"`!setbutton <message_id> <target_message_id> <button_label>` - Add a button linking to another message (alias `!addbutton`).\n" +
		"`!deletemessage <message_id>` - Delete a message.\n" +
		"`!deletebutton <message_id> <button_label>` - Delete the buttons with that label.\n" +
		"`!listmessages` - List all configured messages.\n" +
		"`!sendmessage <message_id>` - Send a message to this channel for debugging.\n" +
		"`!addroletrigger <role_id> <message_id> <priority>` - Send a message when a role is granted.\n" +
		"`!deleteroletrigger <role_id>` - Remove a role trigger.\n" +
		"`!listroletriggers` - List role triggers, highest priority first.\n" +
		"`!help` - Show this help message"
	return textReply(help), outcomeOK
}

// arguments holds the tokens of a command line, verb first, plus the raw
// line so free-text arguments keep their spacing.
type arguments struct {
	fields []string
	raw    string
}

func parseArguments(line string) arguments {
	return arguments{fields: strings.Fields(line), raw: line}
}

// count is the number of tokens after the verb.
func (a arguments) count() int {
	return len(a.fields) - 1
}

// arg returns the i-th token after the verb.
func (a arguments) arg(i int) string {
	return a.fields[i+1]
}

// rest returns the raw text from the i-th token after the verb to the end of
// the line.
func (a arguments) rest(i int) string {
	s := strings.TrimLeftFunc(a.raw, unicode.IsSpace)
	for n := 0; n <= i; n++ {
		idx := strings.IndexFunc(s, unicode.IsSpace)
		if idx < 0 {
			return ""
		}
		s = strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
