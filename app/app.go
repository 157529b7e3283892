package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EasterCompany/dex-welcome-service/di"
	"github.com/EasterCompany/dex-welcome-service/startup"
	"github.com/EasterCompany/dex-welcome-service/system"
	"github.com/EasterCompany/dex-welcome-service/utils"
	"github.com/bwmarrin/discordgo"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	*di.Container
}

func NewApp(ctx context.Context, configPath string) (*App, error) {
	c, err := di.NewContainer(ctx, configPath)
	if err != nil {
		return nil, err
	}
	return &App{Container: c}, nil
}

// Run loads every persisted server config, connects to Discord and blocks
// until ctx is cancelled or the process receives SIGINT or SIGTERM.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Error("failed to close storage", "error", err)
		}
	}()

	loaded, err := startup.LoadServerConfigs(ctx, a.Store, a.Registry, a.Logger)
	if err != nil {
		return err
	}

	a.Events.Register(a.Session)
	a.Session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Ready) {
		a.Presence.SetServers(a.Registry.Len())
	})
	if err := a.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}
	defer func() {
		if err := a.Session.Close(); err != nil {
			a.Logger.Error("failed to close Discord session", "error", err)
		}
	}()
	a.Mirror.Attach(a.Session, a.Config.Discord.LogChannelID)

	a.HealthChecker.Start()
	defer a.HealthChecker.Stop()
	if a.Config.Status.Port > 0 {
		if err := a.StatusServer.Start(); err != nil {
			return err
		}
	}

	cpu, _ := system.GetCPUUsage()
	mem, _ := system.GetMemoryUsage()
	a.Logger.Info("welcome service running",
		"version", utils.GetVersion().String(),
		"servers", loaded,
		"cpu_percent", fmt.Sprintf("%.2f", cpu),
		"memory_percent", fmt.Sprintf("%.2f", mem),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	<-ctx.Done()

	a.Logger.Info("welcome service shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.StatusServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("status server shutdown failed", "error", err)
	}
	return nil
}
