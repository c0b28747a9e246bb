package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/achievements"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/journal"
	"github.com/julianstephens/moodlit/internal/logger"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.entries.SetSize(msg.Width-4, msg.Height-9)
		return m, nil

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncedMsg:
		m.syncing = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Loaded %d entries", msg.report.Loaded)
		if msg.report.Skipped > 0 {
			m.status += fmt.Sprintf(" (%d unreadable skipped)", msg.report.Skipped)
		}
		m.refresh()
		return m, nil

	case submittedMsg:
		return m.handleSubmitted(msg)

	case replacedMsg:
		if msg.err != nil {
			// A second confirm raced the first; the first one reports.
			if errors.Is(msg.err, apperrors.ErrTransactionInProgress) {
				return m, nil
			}
			// The candidate is still pending: stay on the prompt so the
			// user can retry or keep the existing entry.
			m.err = msg.err
			m.status = "Replace failed: y to retry, n to keep the existing entry"
			return m, nil
		}
		m.state = m.tab
		m.pending = nil
		m.err = nil
		m.status = "Replaced entry for " + msg.entry.Day(m.sess.Location)
		m.refresh()
		return m, nil

	case unlockMsg:
		tok := achievements.Token(msg)
		m.toast = &tok
		return m, tea.Batch(waitForUnlock(m.unlocks), expireToast(tok, m.now()))

	case toastExpiredMsg:
		if cur, ok := m.sess.Achievements.Current(); ok {
			m.toast = &cur
			return m, expireToast(cur, m.now())
		}
		m.toast = nil
		return m, nil

	case onlineMsg:
		if msg {
			m.status = "Back online"
		} else {
			m.status = "Offline: changes are disabled"
		}
		return m, waitForOnline(m.online)
	}

	switch m.state {
	case StateLogging:
		return m.updateForm(msg)
	case StateConfirmReplace:
		if k, ok := msg.(tea.KeyMsg); ok {
			return m.updateConfirm(k)
		}
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(k, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(k, m.keys.Tab):
			m.tab = (m.tab + 1) % tabCount
			m.state = m.tab
			return m, nil
		case key.Matches(k, m.keys.ShiftTab):
			m.tab = (m.tab - 1 + tabCount) % tabCount
			m.state = m.tab
			return m, nil
		case key.Matches(k, m.keys.Refresh):
			if m.syncing {
				return m, nil
			}
			m.syncing = true
			return m, tea.Batch(m.spinner.Tick, m.sync())
		case key.Matches(k, m.keys.Log):
			if !m.sess.Gate.Online() {
				m.status = "Offline: cannot log right now"
				return m, nil
			}
			m.draft = &draft{}
			m.form = newEntryForm(m.draft)
			m.state = StateLogging
			return m, m.form.Init()
		}
	}

	if m.state == StateEntries {
		var cmd tea.Cmd
		m.entries, cmd = m.entries.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.state = m.tab
		m.form = nil
		m.status = "Cancelled"
		return m, nil
	case huh.StateCompleted:
		candidate, err := m.draft.entry(m.now())
		m.state = m.tab
		m.form = nil
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.submit(candidate)
	}
	return m, cmd
}

func (m Model) updateConfirm(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Confirm):
		return m, m.confirmReplace()
	case key.Matches(k, m.keys.Cancel):
		if err := m.sess.Journal.CancelReplace(); err != nil {
			logger.Warn("Failed to cancel replacement", "error", err)
		}
		m.state = m.tab
		m.pending = nil
		m.err = nil
		m.status = "Kept the existing entry"
	}
	return m, nil
}

func (m Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	if msg.res.Status == journal.PendingConflict {
		m.pending = &journal.Pending{Candidate: msg.res.Entry, Existing: *msg.res.Existing}
		m.state = StateConfirmReplace
		return m, nil
	}
	m.status = fmt.Sprintf("Logged %.1f for %s", msg.res.Entry.MoodLevel, msg.res.Entry.Day(m.sess.Location))
	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	m.entries.SetEntries(m.sess.Entries.Snapshot())
}
