package commands

import (
	"github.com/bwmarrin/discordgo"
)

// PermissionSource computes a member's effective permissions in a channel.
// *discordgo.Session satisfies it.
type PermissionSource interface {
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// PermissionChecker handles command permission checks
type PermissionChecker struct {
	source PermissionSource
}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker(source PermissionSource) *PermissionChecker {
	return &PermissionChecker{source: source}
}

// CanExecuteCommand reports whether the user holds the administrator
// permission where the command was sent. Server owners always do.
func (pc *PermissionChecker) CanExecuteCommand(userID, channelID string) bool {
	perms, err := pc.source.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}
