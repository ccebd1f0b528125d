package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"feedkiosk/app"
	"feedkiosk/engine"
	"feedkiosk/fetcher"
	"feedkiosk/opener"
)

var errUnknownCommand = errors.New("unknown command")

func readCmd() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Browse the configured feeds from the terminal",
		Description: `Fetches every configured source and prints the feed list, the
article list of the selected source and the selected article whenever they change.

Reads one command per line from stdin:

  r      refresh the selected source
  R      refresh all sources
  s N    select source N
  a N    select article N
  o      open the selected article in the browser
  tab    move focus to the next list
  enter  read the selected article
  x      close the error popup
  q      quit (confirm with y, cancel with n)

Prints all log messages to stderr.`,
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			// Stdout is for the feeds
			log.SetOutput(os.Stderr)

			runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
			defer stop()

			client := fetcher.NewClient(runCtx, fetcher.NewRetriever(cfg.Fetch.Timeout.Duration, cfg.Fetch.UserAgent), cfg.Fetch.QueueSize)
			defer client.Shutdown()

			presenter := newTextPresenter(os.Stdout)
			inputs := make(chan app.Msg, 16)
			go readCommands(runCtx, os.Stdin, presenter.Focus, inputs)

			e := engine.New(engineConfig(cfg), client, opener.NewBrowser(), presenter, inputs)
			if err := e.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// readCommands sends a message for every command line read from r.
// End of input quits.
func readCommands(ctx context.Context, r io.Reader, focus func() app.Focus, inputs chan<- app.Msg) {
	send := func(msg app.Msg) bool {
		select {
		case inputs <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := parseCommand(line, focus())
		if err != nil {
			log.Warn(err)
			continue
		}
		if !send(msg) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Error("Failed to read commands")
	}
	send(app.CloseApp{})
}

// parseCommand maps one input line to a message. Focus decides where tab moves.
func parseCommand(line string, focus app.Focus) (app.Msg, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty line", errUnknownCommand)
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "s", "a":
		if len(args) != 1 {
			return nil, fmt.Errorf("%q takes exactly one index", name)
		}
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid index %q", args[0])
		}
		if name == "s" {
			return app.FeedChanged{Index: index}, nil
		}
		return app.ArticleChanged{Index: index}, nil
	}

	if len(args) > 0 {
		return nil, fmt.Errorf("%q takes no arguments", name)
	}

	switch name {
	case "r":
		return app.FetchSource{}, nil
	case "R":
		return app.FetchAllSources{}, nil
	case "o":
		return app.OpenArticle{}, nil
	case "q":
		return app.ShowQuitPopup{}, nil
	case "y":
		return app.CloseApp{}, nil
	case "n":
		return app.CloseQuitPopup{}, nil
	case "x":
		return app.CloseErrorPopup{}, nil
	case "enter":
		return app.GoReadArticle{}, nil
	case "tab":
		switch focus {
		case app.FocusArticleList:
			return app.ArticleListBlur{}, nil
		case app.FocusArticle:
			return app.ArticleBlur{}, nil
		default:
			return app.FeedListBlur{}, nil
		}
	}

	return nil, fmt.Errorf("%w %q", errUnknownCommand, name)
}
