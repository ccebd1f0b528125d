package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"feedkiosk/fetcher"
	"feedkiosk/models"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch all sources once and print them",
		Description: `Fetches every configured source once and prints each result to
stdout as soon as it arrives.

Returns each feed as a JSON object on a single line. Failed sources carry an
error field instead of articles. Use a tool like jq to process the output.

Prints all other log messages to stderr.`,
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			// Disable logging to stdout
			log.SetOutput(os.Stderr)

			runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
			defer stop()

			client := fetcher.NewClient(runCtx, fetcher.NewRetriever(cfg.Fetch.Timeout.Duration, cfg.Fetch.UserAgent), cfg.Fetch.QueueSize)
			defer client.Shutdown()

			names := lo.Keys(cfg.Sources)
			slices.Sort(names)
			for _, name := range names {
				client.Fetch(name, cfg.Sources[name])
			}

			ticker := time.NewTicker(cfg.Tick.Duration)
			defer ticker.Stop()

			for remaining := len(names); remaining > 0; {
				select {
				case <-runCtx.Done():
					return runCtx.Err()
				case <-ticker.C:
				}
				for {
					result, ok := client.Poll()
					if !ok {
						break
					}
					remaining--
					if err := printEvent(os.Stdout, result); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func printEvent(w io.Writer, result fetcher.Result) error {
	event := models.FeedEvent{Source: result.Source}
	if result.Err != nil {
		event.Error = result.Err.Error()
	} else if result.Feed != nil {
		event.Articles = result.Feed.Articles()
	}

	// Print as a single JSON object on a single line
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
