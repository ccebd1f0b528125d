package app

import "feedkiosk/models"

// Msg is an input to Model.Update. The set of messages is closed;
// Update handles each of them in a single type switch.
type Msg interface {
	isMsg()
}

// FetchSource requests a new fetch of the selected source
type FetchSource struct{}

// FetchAllSources requests a new fetch of every configured source
type FetchAllSources struct{}

// FetchStarted is sent by the loop once a fetch has been handed to the client
type FetchStarted struct {
	Source     string
	Generation uint64
}

// FetchCompleted carries the outcome of a fetch. Exactly one of Feed and Err is set.
type FetchCompleted struct {
	Source     string
	Generation uint64
	Feed       *models.Feed
	Err        error
}

// FeedChanged selects the source at Index in the sorted source list
type FeedChanged struct {
	Index int
}

// ArticleChanged selects the article at Index in the selected feed
type ArticleChanged struct {
	Index int
}

type ShowQuitPopup struct{}

type CloseApp struct{}

type CloseQuitPopup struct{}

type CloseErrorPopup struct{}

// OpenArticle opens the link of the displayed article
type OpenArticle struct{}

// OpenArticleFailed is sent by the loop when the link opener returned an error
type OpenArticleFailed struct {
	URL string
	Err error
}

// Focus movement between the feed list, the article list and the article body
type (
	FeedListBlur    struct{}
	ArticleListBlur struct{}
	ArticleBlur     struct{}
	GoReadArticle   struct{}
)

func (FetchSource) isMsg()       {}
func (FetchAllSources) isMsg()   {}
func (FetchStarted) isMsg()      {}
func (FetchCompleted) isMsg()    {}
func (FeedChanged) isMsg()       {}
func (ArticleChanged) isMsg()    {}
func (ShowQuitPopup) isMsg()     {}
func (CloseApp) isMsg()          {}
func (CloseQuitPopup) isMsg()    {}
func (CloseErrorPopup) isMsg()   {}
func (OpenArticle) isMsg()       {}
func (OpenArticleFailed) isMsg() {}
func (FeedListBlur) isMsg()      {}
func (ArticleListBlur) isMsg()   {}
func (ArticleBlur) isMsg()       {}
func (GoReadArticle) isMsg()     {}

// Task is a side effect requested by Update and executed by the loop
type Task interface {
	isTask()
}

type FetchSourceTask struct {
	Source string
}

type ShowErrorTask struct {
	Message string
}

type OpenLinkTask struct {
	URL string
}

func (FetchSourceTask) isTask() {}
func (ShowErrorTask) isTask()   {}
func (OpenLinkTask) isTask()    {}
