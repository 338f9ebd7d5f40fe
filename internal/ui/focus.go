package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"eisen/internal/timer"
)

func (m Model) updateFocusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.focus
	key := msg.String()
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		// Manual exit discards the session; nothing is credited.
		m.focus = nil
		m.screen = screenDashboard
		m.status = "Focus session discarded"
		return m, nil

	case " ", m.cfg.Keys.Confirm, "enter":
		wasRunning := f.engine.Running()
		f.engine.Toggle()
		if !wasRunning && f.engine.Running() {
			// Fresh tick chain; bumping the generation orphans any tick
			// still in flight from an earlier run.
			f.gen++
			return m, scheduleFocusTick(f.gen)
		}
		return m, nil

	case "r":
		f.engine.Reset()
		f.gen++
		return m, nil

	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.cfg.FocusDurations) {
			seconds := m.cfg.FocusDurations[n-1]
			if f.engine.Configure(seconds) {
				f.gen++
				if err := m.sess.SetFocusSeconds(seconds); err != nil {
					m.status = errStyle.Render(fmt.Sprintf("saving preference: %v", err))
				}
			}
		}
		return m, nil
	}
}

func (m Model) updateFocusTick(msg focusTickMsg) (tea.Model, tea.Cmd) {
	f := m.focus
	if f == nil || msg.gen != f.gen {
		// Stale tick from a paused, reset or abandoned session.
		return m, nil
	}
	completed, elapsedSeconds := f.engine.Tick()
	if completed {
		minutes := elapsedSeconds / 60
		id := f.task.ID
		title := f.task.Title
		m.focus = nil
		m.screen = screenDashboard
		m.bumpFocusMinutes(id, minutes)
		m.recompute()
		m.status = fmt.Sprintf("Focus session on %q complete: +%dm", title, minutes)
		return m, m.creditFocus(id, minutes)
	}
	if f.engine.Running() {
		return m, scheduleFocusTick(f.gen)
	}
	return m, nil
}

func (m Model) viewFocus() string {
	f := m.focus
	var b strings.Builder

	b.WriteString(titleStyle.Render("Focusing on"))
	b.WriteString("\n")
	b.WriteString(f.task.Title)
	b.WriteString("\n\n")

	b.WriteString(clockStyle.Render(formatClock(f.engine.Remaining())))
	b.WriteString("  ")
	switch f.engine.State() {
	case timer.StateRunning:
		b.WriteString("● running")
	case timer.StatePaused:
		b.WriteString("‖ paused")
	case timer.StateCompleted:
		b.WriteString("✓ done")
	default:
		b.WriteString("· ready")
	}
	b.WriteString("\n\n")

	for i, seconds := range m.cfg.FocusDurations {
		label := fmt.Sprintf("[%d] %dm", i+1, seconds/60)
		if seconds == f.engine.Duration() {
			label = titleStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("  ")
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("space start/pause • r reset • esc exit without credit"))
	return b.String()
}
