package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedkiosk/app"
	"feedkiosk/config"
	"feedkiosk/fetcher"
	"feedkiosk/kiosk"
	"feedkiosk/models"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line  string
		focus app.Focus
		want  app.Msg
	}{
		{line: "r", want: app.FetchSource{}},
		{line: "R", want: app.FetchAllSources{}},
		{line: "s 2", want: app.FeedChanged{Index: 2}},
		{line: "a 0", want: app.ArticleChanged{Index: 0}},
		{line: "o", want: app.OpenArticle{}},
		{line: "q", want: app.ShowQuitPopup{}},
		{line: "y", want: app.CloseApp{}},
		{line: "n", want: app.CloseQuitPopup{}},
		{line: "x", want: app.CloseErrorPopup{}},
		{line: "enter", want: app.GoReadArticle{}},
		{line: "tab", focus: app.FocusFeedList, want: app.FeedListBlur{}},
		{line: "tab", focus: app.FocusArticleList, want: app.ArticleListBlur{}},
		{line: "tab", focus: app.FocusArticle, want: app.ArticleBlur{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line, tt.focus)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line    string
		unknown bool
	}{
		{line: "", unknown: true},
		{line: "z", unknown: true},
		{line: "s"},
		{line: "s 1 2"},
		{line: "a -1"},
		{line: "a one"},
		{line: "r now"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := parseCommand(tt.line, app.FocusFeedList)
			require.Error(t, err)
			assert.Equal(t, tt.unknown, errors.Is(err, errUnknownCommand))
		})
	}
}

func TestReadCommands(t *testing.T) {
	inputs := make(chan app.Msg, 8)
	in := strings.NewReader("s 1\n\nbogus\n  tab \n")

	readCommands(context.Background(), in, func() app.Focus { return app.FocusArticleList }, inputs)
	close(inputs)

	var got []app.Msg
	for msg := range inputs {
		got = append(got, msg)
	}
	assert.Equal(t, []app.Msg{
		app.FeedChanged{Index: 1},
		app.ArticleListBlur{},
		app.CloseApp{},
	}, got)
}

func TestTextPresenterPrintsChanges(t *testing.T) {
	var out bytes.Buffer
	p := newTextPresenter(&out)
	assert.Equal(t, app.FocusFeedList, p.Focus())

	s := app.Snapshot{
		Sources: []kiosk.SourceState{
			{Name: "a", Status: kiosk.Success},
			{Name: "b", Status: kiosk.Error},
		},
		SelectedSource:  0,
		Articles:        []string{"Hello", ""},
		SelectedArticle: 0,
		Article: &models.Article{
			Title:   lo.ToPtr("Hello"),
			Summary: "World",
			URL:     "https://example.com/hello",
		},
		Modal: app.ModalError,
		Error: `could not fetch feed "b": connection refused`,
		Focus: app.FocusArticleList,
	}

	p.Render(s)
	first := out.String()
	assert.Contains(t, first, "> 0 [success] a")
	assert.Contains(t, first, "  1 [error] b")
	assert.Contains(t, first, "== Articles: a ==")
	assert.Contains(t, first, "  1 (untitled)")
	assert.Contains(t, first, "Title:   Hello")
	assert.Contains(t, first, "Link:    https://example.com/hello")
	assert.Contains(t, first, `!! could not fetch feed "b": connection refused`)
	assert.Equal(t, app.FocusArticleList, p.Focus())

	// Same snapshot again prints nothing
	p.Render(s)
	assert.Equal(t, first, out.String())

	s.Modal = app.ModalQuit
	s.Error = ""
	p.Render(s)
	assert.Contains(t, strings.TrimPrefix(out.String(), first), "Quit feedkiosk? (y/n)")
}

func TestPrintSources(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSources(&out, map[string]string{
		"b": "https://b.example.com/rss",
		"a": "https://a.example.com/atom",
	}))
	assert.Equal(t, "a\thttps://a.example.com/atom\nb\thttps://b.example.com/rss\n", out.String())
}

func TestPrintEvent(t *testing.T) {
	tests := []struct {
		name   string
		result fetcher.Result
		want   models.FeedEvent
	}{
		{
			name:   "feed",
			result: fetcher.Result{Source: "a", Feed: models.NewFeed("a", []models.Article{{URL: "https://a/1"}})},
			want:   models.FeedEvent{Source: "a", Articles: []models.Article{{URL: "https://a/1"}}},
		},
		{
			name:   "error",
			result: fetcher.Result{Source: "b", Err: &fetcher.ParseError{Err: errors.New("EOF")}},
			want:   models.FeedEvent{Source: "b", Error: "invalid feed document: EOF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, printEvent(&out, tt.result))
			assert.Equal(t, 1, strings.Count(out.String(), "\n"))

			var got models.FeedEvent
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedkiosk", "config.toml")

	cfg, err := addSource(path, "a", "https://a.example.com/rss")
	require.NoError(t, err)
	require.NoError(t, config.Save(path, cfg))

	cfg, err = addSource(path, "b", "https://b.example.com/rss")
	require.NoError(t, err)
	require.NoError(t, config.Save(path, cfg))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a": "https://a.example.com/rss",
		"b": "https://b.example.com/rss",
	}, loaded.Sources)

	_, err = addSource(path, "c", "ftp://c.example.com")
	assert.ErrorIs(t, err, config.ErrInvalidSource)

	require.NoError(t, os.WriteFile(path, []byte("sources = ["), 0o644))
	_, err = addSource(path, "c", "https://c.example.com/rss")
	assert.Error(t, err)
}

func TestAddFirstSourceToExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("tick = \"20ms\"\n[fetch]\ntimeout = \"5s\"\n"), 0o644))

	cfg, err := addSource(path, "a", "https://a.example.com/rss")
	require.NoError(t, err)
	require.NoError(t, config.Save(path, cfg))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "https://a.example.com/rss"}, loaded.Sources)
	assert.Equal(t, 20*time.Millisecond, loaded.Tick.Duration)
	assert.Equal(t, 5*time.Second, loaded.Fetch.Timeout.Duration)

	// Defaults are applied on load, not written back
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "queue_size")
	assert.NotContains(t, string(data), "user_agent")
}
