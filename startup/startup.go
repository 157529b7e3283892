package startup

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/EasterCompany/dex-welcome-service/interfaces"
	"github.com/EasterCompany/dex-welcome-service/state"
	"golang.org/x/sync/errgroup"
)

// loadConcurrency bounds parallel store reads at startup.
const loadConcurrency = 8

// LoadServerConfigs reads every persisted server config into the manager.
// Documents that fail to load are logged and skipped. It returns how many
// were loaded.
func LoadServerConfigs(ctx context.Context, store interfaces.ConfigStore, manager *state.Manager, logger *slog.Logger) (int, error) {
	ids, err := store.ServerIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not list server configs: %w", err)
	}

	var loaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := manager.Load(gctx, id); err != nil {
				logger.ErrorContext(gctx, "failed to load server config", "server_id", id, "error", err)
				return nil
			}
			loaded.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(loaded.Load()), err
	}

	logger.InfoContext(ctx, "server configs loaded", "loaded", loaded.Load(), "found", len(ids))
	return int(loaded.Load()), nil
}
