// Package ui is the composition root: it owns the canonical task list, at
// most one focus-timer engine, and the bubbletea event loop tying them to
// the persistence backend.
package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eisen/internal/api"
	"eisen/internal/config"
	"eisen/internal/session"
	"eisen/internal/task"
	"eisen/internal/timer"
)

const requestTimeout = 10 * time.Second

type screen int

const (
	screenLogin screen = iota
	screenSignup
	screenDashboard
	screenFocus
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type Model struct {
	backend task.Backend
	auth    *api.Client // nil in local-only mode
	sess    *session.Context
	cfg     config.Config

	screen screen
	now    time.Time
	width  int

	authForm *authForm

	tasks   []task.Task
	visible []task.Task
	tab     task.Tab
	cursor  int
	mode    mode
	form    *taskForm
	pending *task.Task // delete awaiting confirmation
	status  string

	focus *focusState
}

// focusState is the ephemeral focus session: the engine plus a tick
// generation counter so a tick scheduled before a pause, reset or exit is
// discarded instead of driving a stale countdown.
type focusState struct {
	task   task.Task
	engine *timer.Engine
	gen    int
}

// Messages. Persistence calls run as tea.Cmds so the UI never blocks on the
// network; each resolves to exactly one of these.
type (
	clockTickMsg   time.Time
	focusTickMsg   struct{ gen int }
	tasksLoadedMsg struct{ tasks []task.Task }
	taskCreatedMsg struct{ t task.Task }
	taskSyncedMsg  struct{ t *task.Task }
	opDoneMsg      struct{ note string }
	opFailedMsg    struct {
		op  string
		err error
	}
	loggedInMsg struct {
		token string
		user  session.User
	}
	signedUpMsg struct{}
)

func Run(backend task.Backend, auth *api.Client, sess *session.Context, cfg config.Config) error {
	m := newModel(backend, auth, sess, cfg)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newModel(backend task.Backend, auth *api.Client, sess *session.Context, cfg config.Config) Model {
	m := Model{
		backend: backend,
		auth:    auth,
		sess:    sess,
		cfg:     cfg,
		now:     time.Now(),
		tab:     task.TabToday,
	}
	if cfg.DefaultTab == "week" || cfg.DefaultTab == "this-week" {
		m.tab = task.TabWeek
	}
	if m.auth == nil || m.sess.Authenticated() {
		m.screen = screenDashboard
	} else {
		m.screen = screenLogin
		m.authForm = newAuthForm(false)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{scheduleClock()}
	if m.screen == screenDashboard {
		cmds = append(cmds, m.loadTasks())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case clockTickMsg:
		m.now = time.Time(msg)
		return m, scheduleClock()

	case focusTickMsg:
		return m.updateFocusTick(msg)

	case tasksLoadedMsg:
		m.tasks = msg.tasks
		m.recompute()
		m.status = fmt.Sprintf("Loaded %d tasks", len(m.tasks))
		return m, nil

	case taskCreatedMsg:
		m.tasks = append(m.tasks, msg.t)
		m.recompute()
		m.status = "Added task"
		return m, nil

	case taskSyncedMsg:
		// Late server acks merge by id; an ack for a task deleted in the
		// meantime is dropped rather than resurrected.
		if msg.t != nil {
			m.mergeTask(*msg.t)
			m.recompute()
		}
		return m, nil

	case opDoneMsg:
		if msg.note != "" {
			m.status = msg.note
		}
		return m, nil

	case opFailedMsg:
		return m.updateFailure(msg)

	case loggedInMsg:
		if err := m.sess.Save(msg.token, msg.user); err != nil {
			m.status = errStyle.Render(fmt.Sprintf("saving session: %v", err))
		}
		m.auth.Token = msg.token
		m.screen = screenDashboard
		m.authForm = nil
		m.status = fmt.Sprintf("Welcome back, %s!", msg.user.Name)
		return m, m.loadTasks()

	case signedUpMsg:
		m.screen = screenLogin
		m.authForm = newAuthForm(false)
		m.authForm.note = "Account created. Log in to continue."
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.screen {
	case screenLogin, screenSignup:
		return m.updateAuth(msg)
	case screenFocus:
		return m.updateFocusKey(msg)
	default:
		return m.updateDashboard(msg)
	}
}

// updateFailure reports a failed operation. Auth failures clear the session
// and fall back to the login screen; everything else lands on the status
// line and the optimistic local state stands until the next reload.
func (m Model) updateFailure(msg opFailedMsg) (tea.Model, tea.Cmd) {
	if m.auth != nil && session.IsAuthError(msg.err) {
		m.sess.Clear()
		m.auth.Token = ""
		m.screen = screenLogin
		m.authForm = newAuthForm(false)
		m.authForm.err = "Session expired. Please log in again."
		m.focus = nil
		return m, nil
	}
	if m.authForm != nil && (m.screen == screenLogin || m.screen == screenSignup) {
		m.authForm.err = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
	} else {
		m.status = errStyle.Render(fmt.Sprintf("%s failed: %v", msg.op, msg.err))
	}
	return m, nil
}

// recompute rebuilds the visible slice through the sort/filter policy and
// keeps the cursor in range.
func (m *Model) recompute() {
	m.visible = task.Visible(m.tasks, m.tab, time.Now())
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m *Model) mergeTask(t task.Task) {
	for i := range m.tasks {
		if m.tasks[i].ID == t.ID {
			m.tasks[i] = t
			return
		}
	}
}

func (m *Model) removeTask(id string) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

func (m *Model) applyDraft(id string, draft task.Draft) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i] = draft.Apply(m.tasks[i])
			return
		}
	}
}

func (m *Model) markCompleted(id string, completed bool) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Completed = completed
			return
		}
	}
}

func (m *Model) bumpFocusMinutes(id string, minutes int) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].FocusMinutes += minutes
			return
		}
	}
}

// Commands.

func scheduleClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func scheduleFocusTick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return focusTickMsg{gen: gen} })
}

func (m Model) loadTasks() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := backend.ListTasks(ctx, task.DateFilter{})
		if err != nil {
			return opFailedMsg{op: "load", err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (m Model) createTask(draft task.Draft) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := backend.CreateTask(ctx, draft)
		if err != nil {
			return opFailedMsg{op: "create", err: err}
		}
		return taskCreatedMsg{t: *t}
	}
}

func (m Model) saveTask(id string, draft task.Draft) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := backend.UpdateTask(ctx, id, draft)
		if err != nil {
			return opFailedMsg{op: "update", err: err}
		}
		return taskSyncedMsg{t: t}
	}
}

func (m Model) completeTask(id string, completed bool) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := backend.SetCompleted(ctx, id, completed)
		if err != nil {
			return opFailedMsg{op: "complete", err: err}
		}
		return taskSyncedMsg{t: t}
	}
}

func (m Model) deleteTask(id string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := backend.DeleteTask(ctx, id); err != nil {
			return opFailedMsg{op: "delete", err: err}
		}
		return opDoneMsg{note: "Deleted task"}
	}
}

func (m Model) creditFocus(id string, minutes int) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := backend.AddFocusMinutes(ctx, id, minutes)
		if err != nil {
			return opFailedMsg{op: "focus time", err: err}
		}
		return taskSyncedMsg{t: t}
	}
}

func (m Model) View() string {
	switch m.screen {
	case screenLogin, screenSignup:
		return m.viewAuth()
	case screenFocus:
		return m.viewFocus()
	default:
		return m.viewDashboard()
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
