package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/EasterCompany/dex-welcome-service/cache"
	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/EasterCompany/dex-welcome-service/store"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v2"
)

func main() {
	defaultPath, _ := config.DefaultPath()

	cliApp := &cli.App{
		Name:  "debug-cache",
		Usage: "inspect server configs kept in Redis",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultPath, Usage: "path to the service config file"},
		},
		Commands: []*cli.Command{
			{
				Name:   "dump",
				Usage:  "print every stored server config",
				Action: dump,
			},
			{
				Name:  "migrate",
				Usage: "copy server configs from the config directory into Redis",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "overwrite", Usage: "replace documents that already exist in Redis"},
				},
				Action: migrate,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openCache(c *cli.Context) (*config.Config, *cache.DB, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("fatal error loading config: %w", err)
	}
	db, err := cache.New(c.Context, cfg.Storage.Redis)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return nil, nil, errors.New("no redis address configured")
	}
	return cfg, db, nil
}

func dump(c *cli.Context) error {
	_, db, err := openCache(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ids, err := db.ServerIDs(c.Context)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Printf("\n--- Server: %d ---\n", id)
		raw, err := db.Raw(c.Context, id)
		if err != nil {
			log.Printf("Failed to read server %d: %v", id, err)
			continue
		}
		if !gjson.Valid(raw) {
			fmt.Printf("Value (invalid JSON): %s\n", raw)
			continue
		}
		fmt.Println(gjson.Get(raw, "@pretty").String())
	}
	return nil
}

func migrate(c *cli.Context) error {
	cfg, db, err := openCache(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fs, err := store.New(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	copied, err := copyConfigs(c.Context, fs, db, c.Bool("overwrite"))
	fmt.Printf("Migrated %d server config(s) from %s\n", copied, fs.Dir())
	return err
}

type configSource interface {
	ServerIDs(ctx context.Context) ([]int64, error)
	Load(ctx context.Context, serverID int64) (*guild.ServerConfig, error)
}

type configSink interface {
	Load(ctx context.Context, serverID int64) (*guild.ServerConfig, error)
	Save(ctx context.Context, cfg *guild.ServerConfig) error
}

// copyConfigs copies every readable document from src to dst. Documents that
// already exist in dst are skipped unless overwrite is set.
func copyConfigs(ctx context.Context, src configSource, dst configSink, overwrite bool) (int, error) {
	ids, err := src.ServerIDs(ctx)
	if err != nil {
		return 0, err
	}
	copied := 0
	for _, id := range ids {
		if !overwrite {
			_, err := dst.Load(ctx, id)
			if err == nil {
				fmt.Printf("Skipping %d: already present\n", id)
				continue
			}
			if !errors.Is(err, guild.ErrServerNotConfigured) {
				fmt.Printf("Skipping %d: existing document unreadable: %v\n", id, err)
				continue
			}
		}
		cfg, err := src.Load(ctx, id)
		if err != nil {
			fmt.Printf("Skipping %d: %v\n", id, err)
			continue
		}
		if err := dst.Save(ctx, cfg); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
