package models

import "time"

// Article is a single entry of a feed, as found in the source document
type Article struct {
	Title   *string    `json:"title,omitempty"`
	Authors *string    `json:"authors,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Summary string     `json:"summary"`
	URL     string     `json:"url"`
}

// Feed is the parsed document of one source at one point in time.
// Articles keep the document order and are never re-sorted or deduplicated.
type Feed struct {
	name     string
	articles []Article
}

func NewFeed(name string, articles []Article) *Feed {
	copied := make([]Article, len(articles))
	copy(copied, articles)
	return &Feed{name: name, articles: copied}
}

func (f *Feed) Name() string {
	return f.name
}

// Articles returns a copy of the articles in document order
func (f *Feed) Articles() []Article {
	copied := make([]Article, len(f.articles))
	copy(copied, f.articles)
	return copied
}

func (f *Feed) Len() int {
	return len(f.articles)
}

// Article returns the article at index i, or false if i is out of range
func (f *Feed) Article(i int) (Article, bool) {
	if i < 0 || i >= len(f.articles) {
		return Article{}, false
	}
	return f.articles[i], true
}

// FeedEvent is written by the fetch command, one JSON object per line
type FeedEvent struct {
	Source   string    `json:"source"`
	Articles []Article `json:"articles,omitempty"`
	Error    string    `json:"error,omitempty"`
}
