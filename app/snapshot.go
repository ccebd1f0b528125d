package app

import (
	"fmt"

	"feedkiosk/kiosk"
	"feedkiosk/models"
)

// Modal is the popup currently shown on top of the lists
type Modal int

const (
	ModalNone Modal = iota
	ModalQuit
	ModalError
)

func (m Modal) String() string {
	switch m {
	case ModalNone:
		return "none"
	case ModalQuit:
		return "quit"
	case ModalError:
		return "error"
	default:
		return fmt.Sprintf("modal(%d)", int(m))
	}
}

func (m Modal) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Focus is the component receiving navigation input
type Focus int

const (
	FocusFeedList Focus = iota
	FocusArticleList
	FocusArticle
)

func (f Focus) String() string {
	switch f {
	case FocusFeedList:
		return "feeds"
	case FocusArticleList:
		return "articles"
	case FocusArticle:
		return "article"
	default:
		return fmt.Sprintf("focus(%d)", int(f))
	}
}

func (f Focus) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Snapshot is everything the presentation layer needs to draw one frame.
// It shares no mutable state with the Model.
type Snapshot struct {
	Sources         []kiosk.SourceState `json:"sources"`
	SelectedSource  int                 `json:"selectedSource"`
	Articles        []string            `json:"articles"`
	SelectedArticle int                 `json:"selectedArticle"`
	Article         *models.Article     `json:"article,omitempty"`
	Modal           Modal               `json:"modal"`
	Error           string              `json:"error,omitempty"`
	Focus           Focus               `json:"focus"`
	Quit            bool                `json:"quit"`
}

// Snapshot derives the presentation view of the current state.
// Selection indexes are -1 when nothing is selected.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Sources:         m.kiosk.GetState(),
		SelectedSource:  noSelection,
		Articles:        m.ArticleTitles(),
		SelectedArticle: m.article,
		Modal:           m.modal,
		Error:           m.errMsg,
		Focus:           m.focus,
		Quit:            m.quit,
	}
	if _, ok := m.SelectedSource(); ok {
		s.SelectedSource = m.feed
	}
	if article, ok := m.SelectedArticle(); ok {
		s.Article = &article
	}
	return s
}
