package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"feedkiosk/app"
)

type ServerConfig struct {
	// Broadcaster holds the snapshots rendered by the engine
	Broadcaster *Broadcaster

	// Inputs is the engine's message channel. Handlers only ever send
	// messages; the engine is the one applying them.
	Inputs chan<- app.Msg

	// KeepAlive is the SSE ping interval
	KeepAlive time.Duration
}

// Server returns a fiber.App exposing the engine's snapshots over HTTP
func Server(config *ServerConfig) *fiber.App {
	bc := config.Broadcaster
	keepAlive := config.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 5 * time.Second
	}

	srv := fiber.New(fiber.Config{DisableStartupMessage: true})

	// Middleware to track the latency of each request
	srv.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Debug("Request")
		return err
	})

	srv.Use(requestid.New(requestid.ConfigDefault))

	srv.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := srv.Group("/api")

	api.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(bc.Latest())
	})

	api.Get("/sources", func(c *fiber.Ctx) error {
		return c.JSON(bc.Latest().Sources)
	})

	api.Post("/refresh", func(c *fiber.Ctx) error {
		return send(c, config.Inputs, app.FetchAllSources{})
	})

	api.Post("/sources/selected/refresh", func(c *fiber.Ctx) error {
		return send(c, config.Inputs, app.FetchSource{})
	})

	api.Post("/sources/:index/select", func(c *fiber.Ctx) error {
		index, err := parseIndex(c.Params("index"), len(bc.Latest().Sources))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return send(c, config.Inputs, app.FeedChanged{Index: index})
	})

	api.Post("/articles/:index/select", func(c *fiber.Ctx) error {
		index, err := parseIndex(c.Params("index"), len(bc.Latest().Articles))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return send(c, config.Inputs, app.ArticleChanged{Index: index})
	})

	api.Get("/events", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		snapshots := make(chan app.Snapshot, 10)
		bc.AddClient(key, snapshots)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			aliveChan := time.NewTicker(keepAlive)
			defer aliveChan.Stop()
			defer func() {
				log.Infof("Cleaning up SSE stream for client: %s", key)
				bc.RemoveClient(key)
			}()

			// Start with the current state so clients don't wait for a change
			if err := writeSnapshot(w, bc.Latest()); err != nil {
				log.Warnf("Failed to send initial snapshot to client %s: %v", key, err)
				return
			}

			for {
				select {
				case <-aliveChan.C:
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}
				case snapshot, ok := <-snapshots:
					if !ok {
						return
					}
					if err := writeSnapshot(w, snapshot); err != nil {
						log.Warnf("Failed to send snapshot to client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return srv
}

func writeSnapshot(w *bufio.Writer, snapshot app.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// send queues msg for the engine, or answers 503 when its queue is full
func send(c *fiber.Ctx, inputs chan<- app.Msg, msg app.Msg) error {
	select {
	case inputs <- msg:
		return c.SendStatus(fiber.StatusAccepted)
	default:
		return c.Status(fiber.StatusServiceUnavailable).SendString("engine busy, try again")
	}
}

func parseIndex(param string, length int) (int, error) {
	index, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", param)
	}
	if index < 0 || index >= length {
		return 0, fmt.Errorf("index %d out of range [0, %d)", index, length)
	}
	return index, nil
}
