package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedkiosk/app"
	"feedkiosk/engine"
	"feedkiosk/fetcher"
	"feedkiosk/kiosk"
	"feedkiosk/models"
)

type fetchCall struct {
	name, uri string
	gen       uint64
}

// fakeClient records fetches; tests push results with complete
type fakeClient struct {
	mu      sync.Mutex
	gen     uint64
	calls   []fetchCall
	pending []fetcher.Result
}

func (c *fakeClient) Fetch(name, uri string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.calls = append(c.calls, fetchCall{name: name, uri: uri, gen: c.gen})
	return c.gen
}

func (c *fakeClient) Poll() (fetcher.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return fetcher.Result{}, false
	}
	r := c.pending[0]
	c.pending = c.pending[1:]
	return r, true
}

func (c *fakeClient) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls) > 0
}

func (c *fakeClient) complete(r fetcher.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, r)
}

func (c *fakeClient) completeAll(results ...fetcher.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, results...)
}

func (c *fakeClient) drained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) == 0
}

func (c *fakeClient) lastGen(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.calls) - 1; i >= 0; i-- {
		if c.calls[i].name == name {
			return c.calls[i].gen
		}
	}
	return 0
}

func (c *fakeClient) fetched() []fetchCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]fetchCall(nil), c.calls...)
}

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (o *fakeOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	return o.err
}

type recordingPresenter struct {
	mu        sync.Mutex
	snapshots []app.Snapshot
}

func (p *recordingPresenter) Render(s app.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, s)
}

func (p *recordingPresenter) all() []app.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]app.Snapshot(nil), p.snapshots...)
}

func (p *recordingPresenter) last() app.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snapshots) == 0 {
		return app.Snapshot{}
	}
	return p.snapshots[len(p.snapshots)-1]
}

type harness struct {
	client    *fakeClient
	opener    *fakeOpener
	presenter *recordingPresenter
	inputs    chan app.Msg
	cancel    context.CancelFunc
	done      chan error
}

func start(t *testing.T, sources map[string]string) *harness {
	t.Helper()
	h := &harness{
		client:    &fakeClient{},
		opener:    &fakeOpener{},
		presenter: &recordingPresenter{},
		inputs:    make(chan app.Msg, 16),
		done:      make(chan error, 1),
	}
	e := engine.New(engine.Config{
		Sources:        sources,
		Tick:           time.Millisecond,
		RedrawInterval: 5 * time.Millisecond,
	}, h.client, h.opener, h.presenter, h.inputs)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- e.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *harness) eventually(t *testing.T, cond func(app.Snapshot) bool) app.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.presenter.last()) }, 2*time.Second, time.Millisecond)
	return h.presenter.last()
}

func statusOf(s app.Snapshot, name string) kiosk.Status {
	state, _ := lo.Find(s.Sources, func(st kiosk.SourceState) bool { return st.Name == name })
	return state.Status
}

func feedOf(name string, n int) *models.Feed {
	articles := make([]models.Article, n)
	for i := range articles {
		articles[i] = models.Article{Title: lo.ToPtr(name), URL: "https://" + name}
	}
	return models.NewFeed(name, articles)
}

func TestRunFetchesEverySourceOnStart(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss", "b": "https://b/rss"})

	require.Eventually(t, func() bool { return len(h.client.fetched()) == 2 }, time.Second, time.Millisecond)
	assert.ElementsMatch(t, []string{"https://a/rss", "https://b/rss"},
		lo.Map(h.client.fetched(), func(c fetchCall, _ int) string { return c.uri }))

	s := h.eventually(t, func(s app.Snapshot) bool { return len(s.Sources) == 2 })
	assert.Equal(t, kiosk.Loading, statusOf(s, "a"))
	assert.Equal(t, kiosk.Loading, statusOf(s, "b"))
}

func TestRunScenario(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss", "b": "https://b/rss"})
	require.Eventually(t, func() bool { return len(h.client.fetched()) == 2 }, time.Second, time.Millisecond)

	h.client.complete(fetcher.Result{Source: "a", Generation: h.client.lastGen("a"), Feed: feedOf("a", 3)})
	s := h.eventually(t, func(s app.Snapshot) bool { return statusOf(s, "a") == kiosk.Success })
	assert.Equal(t, kiosk.Loading, statusOf(s, "b"))
	assert.Equal(t, 0, s.SelectedSource)
	assert.Equal(t, 0, s.SelectedArticle)
	assert.Len(t, s.Articles, 3)

	h.client.complete(fetcher.Result{
		Source:     "b",
		Generation: h.client.lastGen("b"),
		Err:        &fetcher.TransportError{URI: "https://b/rss", Err: errors.New("connection refused")},
	})
	s = h.eventually(t, func(s app.Snapshot) bool { return statusOf(s, "b") == kiosk.Error })
	assert.Equal(t, app.ModalError, s.Modal)
	assert.Equal(t, `could not fetch feed "b": connection refused`, s.Error)
	assert.Equal(t, 0, s.SelectedSource)
	assert.Equal(t, 0, s.SelectedArticle)

	// Re-fetch of a flips it back to Loading immediately
	h.inputs <- app.CloseErrorPopup{}
	h.inputs <- app.FetchSource{}
	s = h.eventually(t, func(s app.Snapshot) bool { return statusOf(s, "a") == kiosk.Loading })
	assert.Equal(t, app.ModalNone, s.Modal)
	assert.Len(t, h.client.fetched(), 3)
}

func TestRunQuit(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss"})

	h.inputs <- app.ShowQuitPopup{}
	h.eventually(t, func(s app.Snapshot) bool { return s.Modal == app.ModalQuit })

	h.inputs <- app.CloseApp{}
	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.True(t, h.presenter.last().Quit)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss"})

	h.cancel()
	select {
	case err := <-h.done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestRunOpenArticle(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss"})
	require.Eventually(t, func() bool { return len(h.client.fetched()) == 1 }, time.Second, time.Millisecond)

	h.client.complete(fetcher.Result{Source: "a", Generation: h.client.lastGen("a"), Feed: feedOf("a", 1)})
	h.eventually(t, func(s app.Snapshot) bool { return s.Article != nil })

	h.inputs <- app.OpenArticle{}
	require.Eventually(t, func() bool {
		h.opener.mu.Lock()
		defer h.opener.mu.Unlock()
		return len(h.opener.opened) == 1
	}, time.Second, time.Millisecond)

	h.opener.mu.Lock()
	assert.Equal(t, "https://a", h.opener.opened[0])
	h.opener.err = errors.New("no browser available")
	h.opener.mu.Unlock()

	h.inputs <- app.OpenArticle{}
	s := h.eventually(t, func(s app.Snapshot) bool { return s.Modal == app.ModalError })
	assert.Equal(t, "no browser available", s.Error)
}

func TestRunDropsSupersededCompletion(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss"})
	require.Eventually(t, func() bool { return len(h.client.fetched()) == 1 }, time.Second, time.Millisecond)
	first := h.client.lastGen("a")

	h.inputs <- app.FetchAllSources{}
	require.Eventually(t, func() bool { return len(h.client.fetched()) == 2 }, time.Second, time.Millisecond)
	second := h.client.lastGen("a")

	h.client.complete(fetcher.Result{Source: "a", Generation: second, Feed: feedOf("a", 2)})
	h.client.complete(fetcher.Result{Source: "a", Generation: first, Err: errors.New("late")})

	// Wait for both completions to be drained, then check the fresh one won
	require.Eventually(t, func() bool {
		return h.client.drained() && statusOf(h.presenter.last(), "a") == kiosk.Success
	}, 2*time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	s := h.presenter.last()
	assert.Equal(t, kiosk.Success, statusOf(s, "a"))
	assert.Equal(t, app.ModalNone, s.Modal)
	assert.Len(t, s.Articles, 2)
}

func TestRunHandlesOneCompletionPerTick(t *testing.T) {
	h := start(t, map[string]string{"a": "https://a/rss", "b": "https://b/rss"})
	require.Eventually(t, func() bool { return len(h.client.fetched()) == 2 }, time.Second, time.Millisecond)

	h.client.completeAll(
		fetcher.Result{Source: "a", Generation: h.client.lastGen("a"), Feed: feedOf("a", 1)},
		fetcher.Result{Source: "b", Generation: h.client.lastGen("b"), Feed: feedOf("b", 1)},
	)
	h.eventually(t, func(s app.Snapshot) bool {
		return statusOf(s, "a") == kiosk.Success && statusOf(s, "b") == kiosk.Success
	})

	// Both were queued together, yet a frame shows the first applied alone
	_, found := lo.Find(h.presenter.all(), func(s app.Snapshot) bool {
		return statusOf(s, "a") == kiosk.Success && statusOf(s, "b") == kiosk.Loading
	})
	assert.True(t, found)
}
