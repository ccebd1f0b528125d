package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"feedkiosk/app"
	"feedkiosk/engine"
	"feedkiosk/fetcher"
	"feedkiosk/opener"
	"feedkiosk/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feed state over HTTP",
		Description: `Starts the fetch engine and an HTTP server on the specified or
default port.

The current state is available as JSON on /api/state and as a stream of
server-sent events on /api/events. Sources and articles are selected and
refreshed with POST requests. Prometheus metrics are served on /metrics.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"FEEDKIOSK_PORT"},
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "0.0.0.0",
				Usage:   "Host to listen on",
				EnvVars: []string{"FEEDKIOSK_HOST"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
			defer stop()

			client := fetcher.NewClient(runCtx, fetcher.NewRetriever(cfg.Fetch.Timeout.Duration, cfg.Fetch.UserAgent), cfg.Fetch.QueueSize)
			defer client.Shutdown()

			bc := server.NewBroadcaster()
			inputs := make(chan app.Msg, 16)
			srv := server.Server(&server.ServerConfig{
				Broadcaster: bc,
				Inputs:      inputs,
			})

			e := engine.New(engineConfig(cfg), client, opener.NewBrowser(), bc, inputs)
			addr := fmt.Sprintf("%s:%d", ctx.String("host"), ctx.Int("port"))

			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				err := e.Run(gctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			g.Go(func() error {
				log.Infof("Starting server on %s", addr)
				return srv.Listen(addr)
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("Gracefully shutting down...")
				bc.Shutdown()
				return srv.ShutdownWithTimeout(60 * time.Second)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info("Done!")
			return nil
		},
	}
}
