// Package app holds the application state and the function that moves it
// from one state to the next in response to messages.
package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"feedkiosk/kiosk"
	"feedkiosk/models"
)

const noSelection = -1

// Model is the whole application state: the Kiosk, the selection, the
// open popup and the quit flag. It is owned by a single loop; presentation
// code reads it through Snapshot.
type Model struct {
	kiosk       *kiosk.Kiosk
	generations map[string]uint64

	feed    int
	article int
	detail  *models.Article

	modal  Modal
	errMsg string
	focus  Focus
	quit   bool

	tasks []Task
}

// NewModel creates a Model with every source Loading and nothing selected
func NewModel(sources []string) *Model {
	return &Model{
		kiosk:       kiosk.New(sources),
		generations: make(map[string]uint64, len(sources)),
		feed:        noSelection,
		article:     noSelection,
		focus:       FocusFeedList,
	}
}

// Update applies msg and returns the follow-up message, if any.
// Side effects are queued as tasks, see Tasks.
func (m *Model) Update(msg Msg) Msg {
	switch msg := msg.(type) {
	case FetchSource:
		if name, ok := m.SelectedSource(); ok {
			m.task(FetchSourceTask{Source: name})
		}
	case FetchAllSources:
		for _, name := range m.kiosk.Sources() {
			m.task(FetchSourceTask{Source: name})
		}
	case FetchStarted:
		m.fetchStarted(msg)
	case FetchCompleted:
		m.fetchCompleted(msg)
	case FeedChanged:
		return m.feedChanged(msg.Index)
	case ArticleChanged:
		m.articleChanged(msg.Index)
	case ShowQuitPopup:
		m.modal = ModalQuit
	case CloseApp:
		m.quit = true
	case CloseQuitPopup:
		if m.modal == ModalQuit {
			m.modal = ModalNone
		}
	case CloseErrorPopup:
		if m.modal == ModalError {
			m.modal = ModalNone
			m.errMsg = ""
		}
	case OpenArticle:
		if m.detail != nil && m.detail.URL != "" {
			m.task(OpenLinkTask{URL: m.detail.URL})
		}
	case OpenArticleFailed:
		if msg.Err == nil {
			m.showError(fmt.Sprintf("could not open %q", msg.URL))
		} else {
			m.showError(msg.Err.Error())
		}
	case FeedListBlur:
		m.focus = FocusArticleList
	case ArticleListBlur:
		m.focus = FocusFeedList
	case ArticleBlur:
		m.focus = FocusArticleList
	case GoReadArticle:
		m.focus = FocusArticle
	default:
	}
	return nil
}

// Tasks returns and clears the queued tasks
func (m *Model) Tasks() []Task {
	tasks := m.tasks
	m.tasks = nil
	return tasks
}

func (m *Model) task(t Task) {
	m.tasks = append(m.tasks, t)
}

func (m *Model) showError(message string) {
	m.task(ShowErrorTask{Message: message})
	// The quit confirmation stays on top; the error is still reported as a task
	if m.modal != ModalQuit {
		m.modal = ModalError
		m.errMsg = message
	}
}

func (m *Model) fetchStarted(msg FetchStarted) {
	if msg.Generation < m.generations[msg.Source] {
		return
	}
	if err := m.kiosk.InsertFeed(msg.Source, kiosk.LoadingState()); err != nil {
		log.WithField("source", msg.Source).Warn(err)
		return
	}
	m.generations[msg.Source] = msg.Generation

	if m.isSelected(msg.Source) {
		m.clearArticle()
	}
}

func (m *Model) fetchCompleted(msg FetchCompleted) {
	if msg.Generation < m.generations[msg.Source] {
		log.WithFields(log.Fields{
			"source":     msg.Source,
			"generation": msg.Generation,
			"latest":     m.generations[msg.Source],
		}).Debug("Discarding superseded fetch")
		return
	}

	if msg.Err != nil {
		if err := m.kiosk.InsertFeed(msg.Source, kiosk.ErrorState(msg.Err.Error())); err != nil {
			log.WithField("source", msg.Source).Warn(err)
			return
		}
		m.showError(fmt.Sprintf("could not fetch feed %q: %v", msg.Source, msg.Err))
		if m.isSelected(msg.Source) {
			m.clearArticle()
		}
		return
	}

	feed := msg.Feed
	if feed == nil {
		feed = models.NewFeed(msg.Source, nil)
	}
	if err := m.kiosk.InsertFeed(msg.Source, kiosk.SuccessState(feed)); err != nil {
		log.WithField("source", msg.Source).Warn(err)
		return
	}

	if m.isSelected(msg.Source) && m.article != noSelection {
		m.clampArticle()
	}
	if m.article == noSelection {
		m.resolveSelection()
	}
}

// resolveSelection selects the first article of the selected source if it
// has any, otherwise the first article of the first sorted source with data
func (m *Model) resolveSelection() {
	if feed, ok := m.selectedFeed(); ok && feed.Len() > 0 {
		m.articleChanged(0)
		return
	}
	for i, name := range m.kiosk.Sources() {
		state, _ := m.kiosk.GetFeed(name)
		if feed, ok := state.Feed(); ok && feed.Len() > 0 {
			m.feed = i
			m.articleChanged(0)
			return
		}
	}
}

func (m *Model) clampArticle() {
	feed, ok := m.selectedFeed()
	if !ok || feed.Len() == 0 {
		m.clearArticle()
		return
	}
	m.articleChanged(min(m.article, feed.Len()-1))
}

func (m *Model) clearArticle() {
	m.article = noSelection
	m.detail = nil
}

func (m *Model) feedChanged(index int) Msg {
	sources := m.kiosk.Sources()
	if index < 0 || index >= len(sources) {
		log.WithField("index", index).Debug("Ignoring out of range feed selection")
		return nil
	}

	m.feed = index
	m.clearArticle()
	if feed, ok := m.selectedFeed(); ok && feed.Len() > 0 {
		return ArticleChanged{Index: 0}
	}
	return nil
}

func (m *Model) articleChanged(index int) {
	feed, ok := m.selectedFeed()
	if !ok {
		return
	}
	article, ok := feed.Article(index)
	if !ok {
		log.WithField("index", index).Debug("Ignoring out of range article selection")
		return
	}
	m.article = index
	m.detail = &article
}

func (m *Model) isSelected(name string) bool {
	selected, ok := m.SelectedSource()
	return ok && selected == name
}

func (m *Model) selectedFeed() (*models.Feed, bool) {
	name, ok := m.SelectedSource()
	if !ok {
		return nil, false
	}
	state, _ := m.kiosk.GetFeed(name)
	return state.Feed()
}

// Queries

// SortedSources returns the source names in the order they are presented
func (m *Model) SortedSources() []string {
	return m.kiosk.Sources()
}

// SelectedSource returns the name of the highlighted source
func (m *Model) SelectedSource() (string, bool) {
	sources := m.kiosk.Sources()
	if m.feed < 0 || m.feed >= len(sources) {
		return "", false
	}
	return sources[m.feed], true
}

func (m *Model) FeedState(name string) (kiosk.FeedState, bool) {
	return m.kiosk.GetFeed(name)
}

func (m *Model) States() []kiosk.SourceState {
	return m.kiosk.GetState()
}

// SelectedArticle returns the article shown in the detail view
func (m *Model) SelectedArticle() (models.Article, bool) {
	if m.detail == nil {
		return models.Article{}, false
	}
	return *m.detail, true
}

// ArticleTitles returns the titles of the selected feed, empty for untitled articles
func (m *Model) ArticleTitles() []string {
	feed, ok := m.selectedFeed()
	if !ok {
		return []string{}
	}
	titles := make([]string, 0, feed.Len())
	for _, article := range feed.Articles() {
		if article.Title != nil {
			titles = append(titles, *article.Title)
		} else {
			titles = append(titles, "")
		}
	}
	return titles
}

func (m *Model) Modal() Modal {
	return m.modal
}

func (m *Model) ErrorMessage() string {
	return m.errMsg
}

func (m *Model) Focus() Focus {
	return m.focus
}

func (m *Model) Quit() bool {
	return m.quit
}
