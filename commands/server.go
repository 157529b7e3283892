package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/EasterCompany/dex-welcome-service/guild"
)

func (h *Handler) handleInit(ctx context.Context, inv Invocation, _ arguments) (*Reply, string) {
	_, err := h.registry.Init(ctx, inv.ServerID)
	if errors.Is(err, guild.ErrAlreadyInitialized) {
		return textReply("Server config already initialized."), outcomeExists
	}
	if err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply("Server config initialized, please use `!setmessage welcome <message>` to set the welcome message and `!setwelcomechannel <channel_id>` to set the welcome channel."), outcomeOK
}

func (h *Handler) handleSetWelcomeChannel(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	id, ok := parseReference(args.arg(0))
	if !ok {
		return textReply("Please provide a valid channel ID."), outcomeInvalidReference
	}
	name, ok := h.resolver.Channel(inv.ServerID, id)
	if !ok {
		return textReply("Invalid channel ID or channel does not belong to this server."), outcomeInvalidReference
	}
	channelID, _ := strconv.ParseInt(id, 10, 64)

	if _, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		cfg.WelcomeChannelID = channelID
		return nil
	}); err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Welcome channel set to: %s", name)), outcomeOK
}

func (h *Handler) handleSetWelcomeRole(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	roleID := guild.Unset
	reply := "Welcome role cleared."
	if args.arg(0) != "-1" {
		id, ok := parseReference(args.arg(0))
		if !ok {
			return textReply("Please provide a valid role ID, or -1 to clear it."), outcomeInvalidReference
		}
		name, ok := h.resolver.Role(inv.ServerID, id)
		if !ok {
			return textReply("Invalid role ID or role does not belong to this server."), outcomeInvalidReference
		}
		roleID, _ = strconv.ParseInt(id, 10, 64)
		reply = fmt.Sprintf("Welcome role set to: %s", name)
	}

	if _, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		cfg.WelcomeRoleID = roleID
		return nil
	}); err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(reply), outcomeOK
}

func (h *Handler) handleWelcomeOnJoin(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	var enabled bool
	switch args.arg(0) {
	case "true":
		enabled = true
	case "false":
	default:
		return textReply("Usage: " + h.commands["welcomeonjoinenabled"].usage), outcomeUsage
	}

	if _, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		cfg.SendWelcomeOnJoin = enabled
		return nil
	}); err != nil {
		return h.failure(ctx, inv, err)
	}
	if enabled {
		return textReply("Welcome message on join enabled."), outcomeOK
	}
	return textReply("Welcome message on join disabled."), outcomeOK
}
