package main

import (
	"context"
	"fmt"
	"os"

	"github.com/EasterCompany/dex-welcome-service/app"
	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/utils"
	"github.com/urfave/cli/v2"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   string
	branch    string
	commit    string
	buildDate string
	arch      string
)

func main() {
	utils.SetVersion(version, branch, commit, buildDate, arch)

	defaultPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not determine config path: %v\n", err)
		os.Exit(1)
	}

	cliApp := &cli.App{
		Name:    "dex-welcome-service",
		Usage:   "Discord welcome and onboarding bot",
		Version: utils.GetVersion().String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultPath,
				Usage:   "path to the service config file (.json or .yaml)",
				EnvVars: []string{"WELCOME_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			a, err := app.NewApp(c.Context, c.String("config"))
			if err != nil {
				return err
			}
			return a.Run(c.Context)
		},
	}

	if err := cliApp.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
