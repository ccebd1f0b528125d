package kiosk

import (
	"fmt"

	"feedkiosk/models"
)

// Status is the payload-free projection of a FeedState
type Status int

const (
	Loading Status = iota
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = Loading
	case "success":
		*s = Success
	case "error":
		*s = Error
	default:
		return fmt.Errorf("unknown feed status %q", text)
	}
	return nil
}

// FeedState is the state of a single source. The zero value is Loading.
type FeedState struct {
	status Status
	feed   *models.Feed
	err    string
}

func LoadingState() FeedState {
	return FeedState{status: Loading}
}

func SuccessState(feed *models.Feed) FeedState {
	return FeedState{status: Success, feed: feed}
}

func ErrorState(message string) FeedState {
	return FeedState{status: Error, err: message}
}

func (s FeedState) Status() Status {
	return s.status
}

// Feed returns the feed if the state is Success
func (s FeedState) Feed() (*models.Feed, bool) {
	return s.feed, s.status == Success
}

// Err returns the failure message if the state is Error
func (s FeedState) Err() (string, bool) {
	return s.err, s.status == Error
}
