package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"feedkiosk/models"
)

// Retriever downloads a source and parses it into a Feed
type Retriever struct {
	client    *http.Client
	userAgent string
}

func NewRetriever(timeout time.Duration, userAgent string) *Retriever {
	return &Retriever{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Retrieve performs a GET on uri and parses the body.
// Network and status failures are *TransportError, malformed documents *ParseError.
func (r *Retriever) Retrieve(ctx context.Context, name, uri string) (*models.Feed, error) {
	body, err := r.get(ctx, uri)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}
	return Parse(name, bytes.NewReader(body))
}

func (r *Retriever) get(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// Parse reads an RSS, Atom or JSON feed document into a Feed named name
func Parse(name string, r io.Reader) (*models.Feed, error) {
	doc, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	articles := lo.Map(doc.Items, func(item *gofeed.Item, _ int) models.Article {
		return toArticle(item)
	})

	return models.NewFeed(name, articles), nil
}

func toArticle(item *gofeed.Item) models.Article {
	article := models.Article{
		Summary: summaryText(lo.Ternary(item.Description != "", item.Description, item.Content)),
		URL:     itemLink(item),
	}

	if title := strings.TrimSpace(item.Title); title != "" {
		article.Title = lo.ToPtr(title)
	}

	authors := lo.FilterMap(item.Authors, func(p *gofeed.Person, _ int) (string, bool) {
		if p == nil {
			return "", false
		}
		name := strings.TrimSpace(lo.Ternary(p.Name != "", p.Name, p.Email))
		return name, name != ""
	})
	if len(authors) > 0 {
		article.Authors = lo.ToPtr(strings.Join(authors, ", "))
	}

	switch {
	case item.PublishedParsed != nil:
		article.Date = lo.ToPtr(*item.PublishedParsed)
	case item.UpdatedParsed != nil:
		article.Date = lo.ToPtr(*item.UpdatedParsed)
	}

	return article
}

func itemLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if len(item.Links) > 0 {
		return item.Links[0]
	}
	return ""
}
