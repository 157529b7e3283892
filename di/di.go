// Package di provides a dependency injection container for the application.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/EasterCompany/dex-welcome-service/cache"
	"github.com/EasterCompany/dex-welcome-service/commands"
	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/events"
	"github.com/EasterCompany/dex-welcome-service/interfaces"
	logger "github.com/EasterCompany/dex-welcome-service/log"
	"github.com/EasterCompany/dex-welcome-service/navigator"
	"github.com/EasterCompany/dex-welcome-service/services"
	"github.com/EasterCompany/dex-welcome-service/session"
	"github.com/EasterCompany/dex-welcome-service/state"
	"github.com/EasterCompany/dex-welcome-service/store"
	"github.com/EasterCompany/dex-welcome-service/utils"
	"github.com/bwmarrin/discordgo"
)

const healthInterval = 30 * time.Second

// Container holds all the dependencies for the application.
type Container struct {
	Config        *config.Config
	Session       *discordgo.Session
	Logger        *slog.Logger
	Mirror        *logger.Mirror
	Store         interfaces.ConfigStore
	Registry      *state.Manager
	Events        *events.Handler
	Presence      *session.Presence
	HealthChecker *services.HealthChecker
	StatusServer  *services.StatusServer

	closeStore func() error
}

// NewContainer creates a new dependency injection container from the config
// file at configPath.
func NewContainer(ctx context.Context, configPath string) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("fatal error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	appLogger, mirror := logger.New(os.Stdout, cfg.LogLevel)

	s, err := session.NewSession(cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	configStore, closeStore, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	appLogger.Info("storage ready", "backend", cfg.Storage.Backend)

	registry := state.NewManager(configStore)
	nav := navigator.New(registry)
	cmds := commands.NewHandler(registry, nav, events.NewResolver(s), cfg.Discord.CommandPrefix, appLogger.With("component", "commands"))
	permissions := commands.NewPermissionChecker(s)
	handler := events.NewHandler(s, cmds, permissions, nav, registry, cfg.Discord.CommandPrefix, appLogger.With("component", "events"))

	hc := services.NewHealthChecker(healthInterval, appLogger.With("component", "health"))
	hc.Register("storage", storageCheck(cfg.Storage, configStore))
	hc.Register("discord", gatewayCheck(s))

	status := services.NewStatusServer(cfg.Status.Port, utils.GetVersion().String(), hc, registry.Len, appLogger.With("component", "status"))

	return &Container{
		Config:        cfg,
		Session:       s,
		Logger:        appLogger,
		Mirror:        mirror,
		Store:         configStore,
		Registry:      registry,
		Events:        handler,
		Presence:      session.NewPresence(s, appLogger.With("component", "presence")),
		HealthChecker: hc,
		StatusServer:  status,
		closeStore:    closeStore,
	}, nil
}

// Close releases the storage backend.
func (c *Container) Close() error {
	if c.closeStore == nil {
		return nil
	}
	return c.closeStore()
}

// OpenStore returns the configured storage backend and a function that
// releases it.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (interfaces.ConfigStore, func() error, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendRedis:
		db, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if db == nil {
			return nil, nil, errors.New("redis backend selected but no address configured")
		}
		return db, db.Close, nil
	case config.BackendFile, "":
		fs, err := store.New(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open config directory %s: %w", cfg.Dir, err)
		}
		return fs, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func storageCheck(cfg config.StorageConfig, s interfaces.ConfigStore) services.CheckFunc {
	if db, ok := s.(*cache.DB); ok {
		return db.Ping
	}
	return func(context.Context) error {
		info, err := os.Stat(cfg.Dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", cfg.Dir)
		}
		return nil
	}
}

// gatewayCheck reports whether the websocket is up. DataReady is written by
// the session's gateway goroutine under its lock.
func gatewayCheck(s *discordgo.Session) services.CheckFunc {
	return func(context.Context) error {
		s.RLock()
		ready := s.DataReady
		s.RUnlock()
		if !ready {
			return errors.New("gateway not connected")
		}
		return nil
	}
}
