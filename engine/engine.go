// Package engine runs the loop that connects the fetch client, the
// application model and the presentation layer.
package engine

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"feedkiosk/app"
	"feedkiosk/fetcher"
)

// Messages handled per tick, the rest wait for the next one
const maxMessagesPerTick = 3

// Client starts fetches and hands back their results without blocking
type Client interface {
	Fetch(name, uri string) uint64
	Poll() (fetcher.Result, bool)
	Running() bool
}

// Opener opens a link in an external application
type Opener interface {
	Open(url string) error
}

// Presenter draws a snapshot. Render is called from the loop and must not block.
type Presenter interface {
	Render(snapshot app.Snapshot)
}

type Config struct {
	// Sources maps source names to their URI
	Sources map[string]string
	// Tick bounds the wait for the next input message
	Tick time.Duration
	// RedrawInterval is how often a redraw is forced while fetches run
	RedrawInterval time.Duration
}

// Engine owns the Model. Nothing else writes to it.
type Engine struct {
	config    Config
	client    Client
	opener    Opener
	presenter Presenter
	inputs    <-chan app.Msg

	model      *app.Model
	redraw     bool
	lastRedraw time.Time
}

func New(config Config, client Client, opener Opener, presenter Presenter, inputs <-chan app.Msg) *Engine {
	if config.Tick <= 0 {
		config.Tick = 10 * time.Millisecond
	}
	if config.RedrawInterval <= 0 {
		config.RedrawInterval = 50 * time.Millisecond
	}

	names := make([]string, 0, len(config.Sources))
	for name := range config.Sources {
		names = append(names, name)
	}

	return &Engine{
		config:    config,
		client:    client,
		opener:    opener,
		presenter: presenter,
		inputs:    inputs,
		model:     app.NewModel(names),
	}
}

// Run fetches every source once and then loops until the user quits or
// ctx is cancelled. It returns nil on quit.
func (e *Engine) Run(ctx context.Context) error {
	e.dispatch(app.FetchAllSources{})
	e.forceRedraw()
	e.view()

	timer := time.NewTimer(e.config.Tick)
	defer timer.Stop()

	for !e.model.Quit() {
		messages, err := e.wait(ctx, timer)
		if err != nil {
			return err
		}
		if len(messages) > 0 {
			e.forceRedraw()
		}
		for _, msg := range messages {
			e.dispatch(msg)
		}

		e.pollFetchedSources()
		e.checkForceRedraw()
		e.view()
	}

	log.Info("Quitting")
	return nil
}

// wait blocks until an input message arrives or the tick elapses, then
// collects whatever else is already queued
func (e *Engine) wait(ctx context.Context, timer *time.Timer) ([]app.Msg, error) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(e.config.Tick)

	var messages []app.Msg
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case msg, ok := <-e.inputs:
		if !ok {
			e.inputs = nil
			return nil, nil
		}
		messages = append(messages, msg)
	}

	for len(messages) < maxMessagesPerTick {
		select {
		case msg, ok := <-e.inputs:
			if !ok {
				e.inputs = nil
				return messages, nil
			}
			messages = append(messages, msg)
		default:
			return messages, nil
		}
	}
	return messages, nil
}

// dispatch runs msg and its follow-ups through the model, then executes
// the tasks they produced
func (e *Engine) dispatch(msg app.Msg) {
	for msg != nil {
		msg = e.model.Update(msg)
	}
	e.runTasks()
}

func (e *Engine) runTasks() {
	for _, task := range e.model.Tasks() {
		switch task := task.(type) {
		case app.FetchSourceTask:
			e.fetchSource(task.Source)
		case app.ShowErrorTask:
			log.Error(task.Message)
			e.forceRedraw()
		case app.OpenLinkTask:
			if err := e.opener.Open(task.URL); err != nil {
				e.dispatch(app.OpenArticleFailed{URL: task.URL, Err: err})
			}
		default:
			log.Warnf("Unknown task %T", task)
		}
	}
}

func (e *Engine) fetchSource(name string) {
	uri, ok := e.config.Sources[name]
	if !ok {
		log.WithField("source", name).Warn("Fetch requested for unconfigured source")
		return
	}

	gen := e.client.Fetch(name, uri)
	log.WithFields(log.Fields{
		"source":     name,
		"uri":        uri,
		"generation": gen,
	}).Info("Fetching source")

	e.dispatch(app.FetchStarted{Source: name, Generation: gen})
	e.forceRedraw()
}

// pollFetchedSources hands at most one completion to the model. The rest
// stay queued for the following ticks.
func (e *Engine) pollFetchedSources() {
	result, ok := e.client.Poll()
	if !ok {
		return
	}
	e.dispatch(app.FetchCompleted{
		Source:     result.Source,
		Generation: result.Generation,
		Feed:       result.Feed,
		Err:        result.Err,
	})
	e.forceRedraw()
}

func (e *Engine) forceRedraw() {
	e.redraw = true
}

func (e *Engine) checkForceRedraw() {
	if e.client.Running() && time.Since(e.lastRedraw) >= e.config.RedrawInterval {
		e.forceRedraw()
	}
}

func (e *Engine) view() {
	if !e.redraw {
		return
	}
	e.redraw = false
	e.lastRedraw = time.Now()
	e.presenter.Render(e.model.Snapshot())
}
