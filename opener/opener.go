// Package opener opens article links in the user's browser
package opener

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
	log "github.com/sirupsen/logrus"
)

// ExternalActionError is returned when a link could not be handed to the browser
type ExternalActionError struct {
	URL string
	Err error
}

func (e *ExternalActionError) Error() string {
	return fmt.Sprintf("could not open %q: %v", e.URL, e.Err)
}

func (e *ExternalActionError) Unwrap() error {
	return e.Err
}

// Browser opens links with the system browser
type Browser struct {
	open func(url string) error
}

func NewBrowser() *Browser {
	// The browser's own output would be written over the terminal
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	return &Browser{open: browser.OpenURL}
}

func (b *Browser) Open(url string) error {
	if url == "" {
		return &ExternalActionError{URL: url, Err: fmt.Errorf("empty link")}
	}

	log.WithField("url", url).Info("Opening link")
	if err := b.open(url); err != nil {
		return &ExternalActionError{URL: url, Err: err}
	}
	return nil
}
