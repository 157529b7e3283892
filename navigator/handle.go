package navigator

import (
	"errors"
	"strconv"
	"strings"
)

// HandlePrefix marks component custom ids owned by the navigator.
const HandlePrefix = "dexnav"

// ErrInvalidHandle is returned for custom ids the navigator did not issue.
var ErrInvalidHandle = errors.New("invalid button handle")

// Handle is the decoded form of a button's custom id. The server id travels
// with the button because presses on messages delivered by DM carry no guild.
type Handle struct {
	ServerID int64
	Index    int
	Target   string
}

// EncodeHandle builds the custom id for the index-th button of a message in
// serverID pointing at target. The index keeps ids unique when two buttons
// share a target.
func EncodeHandle(serverID int64, index int, target string) string {
	return HandlePrefix + ":" + strconv.FormatInt(serverID, 10) + ":" + strconv.Itoa(index) + ":" + target
}

// IsHandle reports whether customID carries the navigator prefix.
func IsHandle(customID string) bool {
	return strings.HasPrefix(customID, HandlePrefix+":")
}

// DecodeHandle parses a custom id issued by EncodeHandle. Targets may
// contain ':'.
func DecodeHandle(customID string) (Handle, error) {
	parts := strings.SplitN(customID, ":", 4)
	if len(parts) != 4 || parts[0] != HandlePrefix {
		return Handle{}, ErrInvalidHandle
	}
	serverID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Handle{}, ErrInvalidHandle
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return Handle{}, ErrInvalidHandle
	}
	return Handle{ServerID: serverID, Index: index, Target: parts[3]}, nil
}
