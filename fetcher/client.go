package fetcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"feedkiosk/models"
)

// Result is a completed fetch for one source. Exactly one of Feed and Err is set.
type Result struct {
	Source     string
	Generation uint64
	Feed       *models.Feed
	Err        error
}

// Source retrieves and parses a single feed
type Source interface {
	Retrieve(ctx context.Context, name, uri string) (*models.Feed, error)
}

// Client runs every fetch in its own goroutine and collects the completions
// in a single queue. Fetch and Poll never block the caller.
type Client struct {
	source     Source
	results    chan Result
	running    atomic.Int64
	generation atomic.Uint64
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewClient(ctx context.Context, source Source, queueSize int) *Client {
	ctx, cancel := context.WithCancel(ctx)
	if queueSize <= 0 {
		queueSize = 1
	}

	return &Client{
		source:  source,
		results: make(chan Result, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Fetch starts a new fetch for name and returns its generation.
// Fetches already in flight, including ones for the same source, are left alone.
func (c *Client) Fetch(name, uri string) uint64 {
	gen := c.generation.Add(1)

	c.running.Add(1)
	fetchInFlight.Inc()
	fetchRequests.WithLabelValues(name).Inc()
	c.wg.Add(1)

	go c.worker(name, uri, gen)

	return gen
}

func (c *Client) worker(name, uri string, gen uint64) {
	defer c.wg.Done()
	defer func() {
		c.running.Add(-1)
		fetchInFlight.Dec()
	}()

	start := time.Now()
	feed, err := c.source.Retrieve(c.ctx, name, uri)
	fetchDuration.Observe(time.Since(start).Seconds())

	fields := log.Fields{
		"source":     name,
		"uri":        uri,
		"generation": gen,
		"duration":   time.Since(start),
	}
	if err != nil {
		fetchErrors.WithLabelValues(name, errorKind(err)).Inc()
		log.WithFields(fields).WithError(err).Warn("Fetch failed")
	} else {
		fetchArticles.Observe(float64(feed.Len()))
		log.WithFields(fields).WithField("articles", feed.Len()).Debug("Fetch completed")
	}

	select {
	case c.results <- Result{Source: name, Generation: gen, Feed: feed, Err: err}:
	case <-c.ctx.Done():
	}
}

// Poll returns one completed fetch, or false if none is available
func (c *Client) Poll() (Result, bool) {
	select {
	case r := <-c.results:
		return r, true
	default:
		return Result{}, false
	}
}

// Running reports whether at least one fetch has not yet delivered its result
func (c *Client) Running() bool {
	return c.running.Load() > 0
}

// Shutdown cancels in-flight fetches and waits for their goroutines to exit
func (c *Client) Shutdown() {
	c.cancel()
	c.wg.Wait()
}
