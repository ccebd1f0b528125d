// Package kiosk stores the current state of every configured source
package kiosk

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

var ErrUnknownSource = errors.New("unknown source")

// SourceState pairs a source name with its status
type SourceState struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Kiosk maps source names to their FeedState. The set of names is fixed
// when the Kiosk is created. A Kiosk is not safe for concurrent use; it
// belongs to the loop that drives the application.
type Kiosk struct {
	feeds map[string]FeedState
}

// New creates a Kiosk with every name set to Loading
func New(names []string) *Kiosk {
	k := &Kiosk{feeds: make(map[string]FeedState, len(names))}
	for _, name := range names {
		k.feeds[name] = LoadingState()
	}
	return k
}

// InsertFeed replaces the state of name
func (k *Kiosk) InsertFeed(name string, state FeedState) error {
	if _, ok := k.feeds[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	k.feeds[name] = state
	return nil
}

func (k *Kiosk) GetFeed(name string) (FeedState, bool) {
	state, ok := k.feeds[name]
	return state, ok
}

// Sources returns all source names in lexicographic order
func (k *Kiosk) Sources() []string {
	names := lo.Keys(k.feeds)
	slices.Sort(names)
	return names
}

// GetState returns the status of every source in lexicographic order
func (k *Kiosk) GetState() []SourceState {
	return lo.Map(k.Sources(), func(name string, _ int) SourceState {
		return SourceState{Name: name, Status: k.feeds[name].Status()}
	})
}
