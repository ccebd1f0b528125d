package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"

	"feedkiosk/app"
)

// textPresenter prints a snapshot as plain text whenever it differs from
// the last one printed
type textPresenter struct {
	mu   sync.Mutex
	w    io.Writer
	last *app.Snapshot
}

func newTextPresenter(w io.Writer) *textPresenter {
	return &textPresenter{w: w}
}

func (p *textPresenter) Render(snapshot app.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last != nil && cmp.Equal(*p.last, snapshot) {
		return
	}
	p.last = &snapshot
	fmt.Fprint(p.w, formatSnapshot(snapshot))
}

// Focus returns the focus of the last printed snapshot
func (p *textPresenter) Focus() app.Focus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return app.FocusFeedList
	}
	return p.last.Focus
}

func formatSnapshot(s app.Snapshot) string {
	var b strings.Builder

	b.WriteString("== Feeds ==\n")
	for i, source := range s.Sources {
		fmt.Fprintf(&b, "%s %d [%s] %s\n", cursor(i == s.SelectedSource), i, source.Status, source.Name)
	}

	if s.SelectedSource >= 0 && s.SelectedSource < len(s.Sources) {
		fmt.Fprintf(&b, "== Articles: %s ==\n", s.Sources[s.SelectedSource].Name)
		for i, title := range s.Articles {
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&b, "%s %d %s\n", cursor(i == s.SelectedArticle), i, title)
		}
	}

	if a := s.Article; a != nil {
		b.WriteString("== Article ==\n")
		if a.Title != nil {
			fmt.Fprintf(&b, "Title:   %s\n", *a.Title)
		}
		if a.Authors != nil {
			fmt.Fprintf(&b, "Authors: %s\n", *a.Authors)
		}
		if a.Date != nil {
			fmt.Fprintf(&b, "Date:    %s\n", a.Date.Format(time.RFC1123))
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "Link:    %s\n", a.URL)
		}
		if a.Summary != "" {
			fmt.Fprintf(&b, "\n%s\n", a.Summary)
		}
	}

	switch s.Modal {
	case app.ModalError:
		fmt.Fprintf(&b, "!! %s (x to close)\n", s.Error)
	case app.ModalQuit:
		b.WriteString("?? Quit feedkiosk? (y/n)\n")
	}

	fmt.Fprintf(&b, "-- focus: %s --\n", s.Focus)
	return b.String()
}

func cursor(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}
