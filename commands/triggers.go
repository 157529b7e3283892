package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/EasterCompany/dex-welcome-service/guild"
)

var errTriggerNotFound = errors.New("role trigger not found")

func (h *Handler) handleAddRoleTrigger(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	priority, err := strconv.Atoi(args.arg(2))
	if err != nil {
		return textReply("Usage: " + h.commands["addroletrigger"].usage + " (priority must be a whole number)"), outcomeUsage
	}
	roleID, ok := parseReference(args.arg(0))
	if !ok {
		return textReply("Please provide a valid role ID."), outcomeInvalidReference
	}
	roleName, ok := h.resolver.Role(inv.ServerID, roleID)
	if !ok {
		return textReply("Invalid role ID or role does not belong to this server."), outcomeInvalidReference
	}
	name := args.arg(1)

	if _, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		cfg.RoleTriggers.Set(roleID, name, priority)
		return nil
	}); err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Role trigger set: %s -> '%s' (priority %d).", roleName, name, priority)), outcomeOK
}

func (h *Handler) handleDeleteRoleTrigger(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	roleID, ok := parseReference(args.arg(0))
	if !ok {
		return textReply("Please provide a valid role ID."), outcomeInvalidReference
	}
	_, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		if !cfg.RoleTriggers.Delete(roleID) {
			return errTriggerNotFound
		}
		return nil
	})
	if errors.Is(err, errTriggerNotFound) {
		return textReply(fmt.Sprintf("No role trigger found for role %s.", roleID)), outcomeNotFound
	}
	if err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Role trigger for role %s deleted.", roleID)), outcomeOK
}

func (h *Handler) handleListRoleTriggers(_ context.Context, inv Invocation, _ arguments) (*Reply, string) {
	cfg, ok := h.registry.Snapshot(inv.ServerID)
	if !ok {
		return textReply(replyNotConfigured), outcomeNotConfigured
	}
	entries := cfg.RoleTriggers.Sorted()
	if len(entries) == 0 {
		return textReply("No role triggers configured."), outcomeOK
	}

	lines := []string{"Configured role triggers:"}
	for _, e := range entries {
		role := e.RoleID
		if name, ok := h.resolver.Role(inv.ServerID, e.RoleID); ok {
			role = fmt.Sprintf("%s (%s)", name, e.RoleID)
		}
		lines = append(lines, fmt.Sprintf("- %s -> `%s` (priority %d)", role, e.MessageID, e.Priority))
	}
	return textReply(strings.Join(lines, "\n")), outcomeOK
}
