package main

import (
	"context"
	"fmt"
	"os"

	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/di"
	"github.com/urfave/cli/v2"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

func main() {
	defaultPath, _ := config.DefaultPath()

	cliApp := &cli.App{
		Name:  "verify-config",
		Usage: "check the service config and every stored server config",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultPath, Usage: "path to the service config file"},
		},
		Action: func(c *cli.Context) error {
			if !verify(c.Context, c.String("config")) {
				return cli.Exit(fmt.Sprintf("%s❌ Some issues were found in the configuration.%s", ColorRed, ColorReset), 1)
			}
			fmt.Printf("%s✅ All configuration files seem correct.%s\n", ColorGreen, ColorReset)
			return nil
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func verify(ctx context.Context, path string) bool {
	fmt.Printf("%s--- Dexter Welcome Config Verifier ---%s\n", ColorBlue, ColorReset)

	fmt.Printf("\nVerifying %s'%s'%s...\n", ColorBlue, path, ColorReset)
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		return false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		return false
	}
	fmt.Printf("  %s[OK]%s Service config is valid.\n", ColorGreen, ColorReset)

	store, closeStore, err := di.OpenStore(ctx, cfg.Storage)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		return false
	}
	defer closeStore()

	ids, err := store.ServerIDs(ctx)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		return false
	}
	fmt.Printf("\nVerifying %d server config(s) in the %s backend...\n", len(ids), cfg.Storage.Backend)

	allChecksPassed := true
	for _, id := range ids {
		serverCfg, err := store.Load(ctx, id)
		if err != nil {
			fmt.Printf("  %s[FAIL]%s %d: %v\n", ColorRed, ColorReset, id, err)
			allChecksPassed = false
			continue
		}
		findings := serverCfg.Audit()
		if len(findings) == 0 {
			fmt.Printf("  %s[OK]%s %d: %d message(s), %d role trigger(s).\n", ColorGreen, ColorReset, id, serverCfg.Messages.Len(), len(serverCfg.RoleTriggers))
			continue
		}
		// Dangling references are allowed, so they only warn.
		for _, f := range findings {
			fmt.Printf("  %s[WARN]%s %d: %s\n", ColorYellow, ColorReset, id, f)
		}
	}
	return allChecksPassed
}
