// Package interfaces defines interfaces for various application components.
package interfaces

import (
	"context"

	"github.com/EasterCompany/dex-welcome-service/guild"
)

// ConfigStore persists one ServerConfig document per server. Save is a
// whole-document overwrite with no concurrency token, so callers serialize
// mutations per server.
type ConfigStore interface {
	Load(ctx context.Context, serverID int64) (*guild.ServerConfig, error)
	Save(ctx context.Context, cfg *guild.ServerConfig) error
	ServerIDs(ctx context.Context) ([]int64, error)
}
