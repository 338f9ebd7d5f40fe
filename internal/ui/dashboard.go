package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"eisen/internal/task"
	"eisen/internal/timer"
)

const dueDateLayout = "2006-01-02"

// taskForm is the add/edit editor. The first four fields are text inputs;
// the last row picks the quadrant.
type taskForm struct {
	id       string // empty while creating
	inputs   []textinput.Model
	quadrant task.Quadrant
	index    int
	err      string
}

const formQuadrantRow = 4

var formLabels = []string{"Title", "Description", "Due (YYYY-MM-DD)", "Tag", "Quadrant"}

func newTaskForm(t *task.Task, now time.Time) *taskForm {
	f := &taskForm{quadrant: task.Q2}
	values := []string{"", "", now.Format(dueDateLayout), ""}
	if t != nil {
		f.id = t.ID
		f.quadrant = t.Quadrant
		if f.quadrant == "" {
			f.quadrant = task.Q4
		}
		values = []string{t.Title, t.Description, t.DueDate.Format(dueDateLayout), t.Tag}
	}
	for i, v := range values {
		in := textinput.New()
		in.Placeholder = formLabels[i]
		in.CharLimit = 256
		in.Width = 40
		in.SetValue(v)
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f *taskForm) focusRow(i int) {
	f.index = wrapIndex(i, formQuadrantRow+1)
	for j := range f.inputs {
		if j == f.index {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *taskForm) cycleQuadrant(delta int) {
	order := []task.Quadrant{task.Q1, task.Q2, task.Q3, task.Q4}
	for i, q := range order {
		if q == f.quadrant {
			f.quadrant = order[wrapIndex(i+delta, len(order))]
			return
		}
	}
	f.quadrant = task.Q2
}

func (f *taskForm) draft() (task.Draft, error) {
	due, err := time.ParseInLocation(dueDateLayout, strings.TrimSpace(f.inputs[2].Value()), time.Local)
	if err != nil {
		return task.Draft{}, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	d := task.Draft{
		Title:       strings.TrimSpace(f.inputs[0].Value()),
		Description: strings.TrimSpace(f.inputs[1].Value()),
		DueDate:     due,
		Tag:         strings.TrimSpace(f.inputs[3].Value()),
		Quadrant:    f.quadrant,
	}
	if err := d.Validate(); err != nil {
		return task.Draft{}, err
	}
	return d, nil
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateDeleteConfirm(msg.String())
	default:
		return m.updateList(msg.String())
	}
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keys
	switch key {
	case keys.Quit:
		return m, tea.Quit

	case keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible))

	case keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}

	case keys.SwitchTab:
		if m.tab == task.TabToday {
			m.tab = task.TabWeek
		} else {
			m.tab = task.TabToday
		}
		m.recompute()

	case keys.Add:
		m.form = newTaskForm(nil, time.Now())
		m.mode = modeForm

	case keys.Edit:
		if len(m.visible) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		t := m.visible[m.cursor]
		m.form = newTaskForm(&t, time.Now())
		m.mode = modeForm

	case keys.Toggle:
		if len(m.visible) == 0 {
			return m, nil
		}
		// Optimistic: flip locally, confirm in the background.
		t := m.visible[m.cursor]
		m.markCompleted(t.ID, !t.Completed)
		m.recompute()
		m.status = "Toggled task"
		return m, m.completeTask(t.ID, !t.Completed)

	case keys.Delete:
		if len(m.visible) == 0 {
			return m, nil
		}
		t := m.visible[m.cursor]
		m.pending = &t
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)

	case keys.Focus:
		if len(m.visible) == 0 {
			return m, nil
		}
		t := m.visible[m.cursor]
		if t.Completed {
			m.status = "Task is already done"
			return m, nil
		}
		m.focus = &focusState{task: t, engine: timer.New(m.sess.FocusSeconds())}
		m.screen = screenFocus

	case keys.Refresh:
		m.status = "Reloading..."
		return m, m.loadTasks()

	case keys.Logout:
		if m.auth == nil {
			m.status = "Local mode has no account"
			return m, nil
		}
		m.sess.Clear()
		m.auth.Token = ""
		m.tasks = nil
		m.visible = nil
		m.screen = screenLogin
		m.authForm = newAuthForm(false)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		m.status = "Cancelled"
		return m, nil

	case "tab", "down":
		f.focusRow(f.index + 1)
		return m, nil

	case "shift+tab", "up":
		f.focusRow(f.index - 1)
		return m, nil

	case "left", "right":
		if f.index == formQuadrantRow {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			f.cycleQuadrant(delta)
			return m, nil
		}

	case "enter":
		if f.index < formQuadrantRow {
			f.focusRow(f.index + 1)
			return m, nil
		}
		draft, err := f.draft()
		if err != nil {
			f.err = err.Error()
			return m, nil
		}
		id := f.id
		m.form = nil
		m.mode = modeList
		if id == "" {
			m.status = "Saving..."
			return m, m.createTask(draft)
		}
		// Optimistic merge; completion state and focus minutes are
		// untouched by design.
		m.applyDraft(id, draft)
		m.recompute()
		m.status = "Saved task"
		return m, m.saveTask(id, draft)
	}

	if f.index < formQuadrantRow {
		var cmd tea.Cmd
		f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.pending == nil {
			m.mode = modeList
			return m, nil
		}
		id := m.pending.ID
		m.pending = nil
		m.mode = modeList
		// Optimistic removal; a failure is reported but not reverted.
		m.removeTask(id)
		m.recompute()
		return m, m.deleteTask(id)
	case "n", "N", "esc":
		m.pending = nil
		m.mode = modeList
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Eisenhower Matrix"))
	b.WriteString("  ")
	b.WriteString(clockStyle.Render(m.now.Format("15:04:05")))
	if m.sess.User.Name != "" {
		b.WriteString(dimStyle.Render("  " + m.sess.User.Name))
	}
	b.WriteString("\n\n")

	for _, tab := range []task.Tab{task.TabToday, task.TabWeek} {
		style := tabInactiveStyle
		if tab == m.tab {
			style = tabActiveStyle
		}
		b.WriteString(style.Render(tab.String()))
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	if m.mode == modeForm {
		b.WriteString(m.viewForm())
	} else if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("No tasks here. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		for i, t := range m.visible {
			b.WriteString(m.renderTaskLine(i, t))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.renderHelp()))
	return b.String()
}

func (m Model) renderTaskLine(i int, t task.Task) string {
	cursor := " "
	if m.cursor == i && m.mode == modeList {
		cursor = ">"
	}
	checkbox := "[ ]"
	if t.Completed {
		checkbox = "[x]"
	}

	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}

	extras := []string{t.DueDate.Format(dueDateLayout)}
	if t.Tag != "" {
		extras = append(extras, "#"+t.Tag)
	}
	if t.FocusMinutes > 0 {
		extras = append(extras, fmt.Sprintf("%dm focused", t.FocusMinutes))
	}

	return fmt.Sprintf("%s %s %s %s %s", cursor, checkbox, quadrantBadge(t.Quadrant), title,
		dimStyle.Render(strings.Join(extras, " • ")))
}

func (m Model) viewForm() string {
	f := m.form
	var b strings.Builder
	if f.id == "" {
		b.WriteString("Add a new task\n\n")
	} else {
		b.WriteString("Edit task\n\n")
	}
	for i := range f.inputs {
		prefix := " "
		if f.index == i {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-17s %s\n", prefix, formLabels[i], f.inputs[i].View()))
	}
	prefix := " "
	if f.index == formQuadrantRow {
		prefix = ">"
	}
	b.WriteString(fmt.Sprintf("%s %-17s %s %s\n", prefix, formLabels[formQuadrantRow],
		quadrantBadge(f.quadrant), dimStyle.Render(f.quadrant.Label())))
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter next/save • left/right quadrant • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	if m.mode == modeConfirmDelete {
		return "y confirm • n cancel"
	}
	return fmt.Sprintf("%s/%s move • %s tab • %s add • %s edit • %s toggle • %s delete • %s focus • %s reload • %s logout • %s quit",
		k.Up, k.Down, k.SwitchTab, k.Add, k.Edit, keyName(k.Toggle), k.Delete, k.Focus, k.Refresh, k.Logout, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
