package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"feedkiosk/config"
	"feedkiosk/engine"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "feedkiosk",
		Usage: "Fetch RSS and Atom feeds and browse them",
		Description: `Fetches a configured set of RSS and Atom feeds in the background
		and lets you browse the sources, their articles and article details.

		Feeds are fetched concurrently. Every source shows whether it is
		loading, loaded or failed while the rest of the program stays responsive.

		Flags can generally be set via environment variables, e.g.:

		--config => FEEDKIOSK_CONFIG=~/.config/feedkiosk/config.toml
		--port => FEEDKIOSK_PORT=3000
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath(),
				Usage:   "Path to the TOML configuration file",
				EnvVars: []string{"FEEDKIOSK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"FEEDKIOSK_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			readCmd(),
			serveCmd(),
			fetchCmd(),
			sourcesCmd(),
			addCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(ctx *cli.Context) (*config.TomlConfig, error) {
	path := ctx.String("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"path":    path,
		"sources": len(cfg.Sources),
	}).Debug("Loaded config")
	return cfg, nil
}

func engineConfig(cfg *config.TomlConfig) engine.Config {
	return engine.Config{
		Sources:        cfg.Sources,
		Tick:           cfg.Tick.Duration,
		RedrawInterval: cfg.RedrawInterval.Duration,
	}
}
