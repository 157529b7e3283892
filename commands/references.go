package commands

import (
	"strconv"
	"strings"
)

// Resolver checks that channel and role ids belong to a server and returns
// their display names.
type Resolver interface {
	Channel(serverID int64, channelID string) (name string, ok bool)
	Role(serverID int64, roleID string) (name string, ok bool)
}

// parseReference accepts a bare id or a channel or role mention and returns
// the id in canonical decimal form.
func parseReference(token string) (string, bool) {
	id := strings.TrimSuffix(token, ">")
	for _, prefix := range []string{"<#", "<@&"} {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimPrefix(id, prefix)
			break
		}
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
