package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"

	"feedkiosk/config"
)

func addCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a source to the configuration",
		Description: `Asks for the name and the URL of a feed and adds it to the
configuration file, creating the file if it does not exist yet.

An existing source with the same name is replaced.`,
		Action: func(ctx *cli.Context) error {
			name, err := prompt.New().Ask("Name:").Input("nytimes")
			if err != nil {
				return err
			}

			uri, err := prompt.New().Ask("Feed URL:").Input("https://rss.nytimes.com/services/xml/rss/nyt/World.xml")
			if err != nil {
				return err
			}

			path := ctx.String("config")
			cfg, err := addSource(path, name, uri)
			if err != nil {
				return err
			}

			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(ctx.App.Writer, "Added %s to %s\n", name, path)
			return nil
		},
	}
}

// addSource returns the configuration at path, as written, with the source added
func addSource(path, name, uri string) (*config.TomlConfig, error) {
	if err := config.ValidateSource(name, uri); err != nil {
		return nil, err
	}

	cfg, err := config.Read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = &config.TomlConfig{Sources: map[string]string{}}
	case err != nil:
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Sources[name] = uri
	return cfg, nil
}
