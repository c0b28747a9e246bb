// Package tui is the interactive dashboard: the journal, its analytics and
// achievements, with live unlock toasts and a connectivity indicator.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/achievements"
	"github.com/julianstephens/moodlit/internal/journal"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/session"
	entrylist "github.com/julianstephens/moodlit/internal/tui/components/entries"
)

type SessionState int

const (
	StateEntries SessionState = iota
	StateStats
	StateAchievements
	StateLogging
	StateConfirmReplace
)

const tabCount = 3

var tabTitles = [tabCount]string{"Entries", "Stats", "Achievements"}

type (
	syncedMsg struct {
		report journal.FetchReport
		err    error
	}
	submittedMsg struct {
		res journal.SubmitResult
		err error
	}
	replacedMsg struct {
		entry models.MoodEntry
		err   error
	}
	unlockMsg       achievements.Token
	onlineMsg       bool
	toastExpiredMsg struct{}
)

type Model struct {
	sess     *session.Session
	now      func() time.Time
	state    SessionState
	tab      SessionState
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	entries  entrylist.Model
	form     *huh.Form
	draft    *draft
	pending  *journal.Pending
	toast    *achievements.Token
	status   string
	err      error
	syncing  bool
	quitting bool
	width    int
	height   int

	unlocks     <-chan achievements.Token
	online      chan bool
	unsubscribe func()
}

// NewModel builds the dashboard for s. now defaults to time.Now.
func NewModel(s *session.Session, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	online := make(chan bool, 1)
	unsubscribe := s.Gate.Subscribe(func(on bool) {
		select {
		case online <- on:
		default:
		}
	})

	return Model{
		sess:        s,
		now:         now,
		state:       StateEntries,
		tab:         StateEntries,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		entries:     entrylist.New(s.Location, 80, 10),
		syncing:     true,
		unlocks:     s.Achievements.Subscribe(),
		online:      online,
		unsubscribe: unsubscribe,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sync(), waitForUnlock(m.unlocks), waitForOnline(m.online))
}

// Close detaches the model from the gate.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == StateConfirmReplace {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) sync() tea.Cmd {
	s := m.sess
	return func() tea.Msg {
		report, err := s.Sync(context.Background())
		return syncedMsg{report: report, err: err}
	}
}

func (m Model) submit(candidate models.MoodEntry) tea.Cmd {
	j := m.sess.Journal
	return func() tea.Msg {
		res, err := j.Submit(context.Background(), candidate)
		return submittedMsg{res: res, err: err}
	}
}

func (m Model) confirmReplace() tea.Cmd {
	j := m.sess.Journal
	return func() tea.Msg {
		e, err := j.ConfirmReplace(context.Background())
		return replacedMsg{entry: e, err: err}
	}
}

func waitForUnlock(ch <-chan achievements.Token) tea.Cmd {
	return func() tea.Msg {
		tok, ok := <-ch
		if !ok {
			return nil
		}
		return unlockMsg(tok)
	}
}

func waitForOnline(ch <-chan bool) tea.Cmd {
	return func() tea.Msg {
		return onlineMsg(<-ch)
	}
}

// expireToast fires when the shown token runs out.
func expireToast(tok achievements.Token, now time.Time) tea.Cmd {
	d := tok.Expires.Sub(now)
	if d < 0 {
		d = 0
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}
