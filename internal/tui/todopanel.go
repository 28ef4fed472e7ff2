package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kursadm/tomatui/internal/session"
	"github.com/kursadm/tomatui/internal/todo"
)

type todoModel struct {
	todos  *todo.List
	engine *session.Engine
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form value as a pointer (survives value copies)
	newTask *string
}

func newTodoModel(t *todo.List, e *session.Engine) todoModel {
	task := ""
	return todoModel{
		todos:   t,
		engine:  e,
		newTask: &task,
	}
}

func (m *todoModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m todoModel) showForm() (todoModel, tea.Cmd) {
	*m.newTask = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("New task").Value(m.newTask),
		),
	).WithShowHelp(false).WithShowErrors(false)
	m.formActive = true
	return m, m.form.Init()
}

func (m todoModel) updateForm(msg tea.Msg) (todoModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		m.todos.Add(*m.newTask)
		return m, nil
	}

	return m, cmd
}

func (m todoModel) update(msg tea.Msg) (todoModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Add):
		return m.showForm()
	case key.Matches(keyMsg, keys.Up):
		m.todos.MoveSelection(-1)
	case key.Matches(keyMsg, keys.Down):
		m.todos.MoveSelection(1)
	case key.Matches(keyMsg, keys.Toggle):
		m.todos.ToggleSelected()
	case key.Matches(keyMsg, keys.Delete):
		deleted := m.todos.SelectedIndex()
		timed := m.engine.SelectedTaskIndex()
		m.todos.DeleteSelected()
		// Keep the timed-task index in step with the shifted list.
		switch {
		case timed == deleted:
			m.engine.ClearSelectedTask()
		case timed > deleted:
			m.engine.SetSelectedTask(timed-1, m.engine.SelectedTaskName())
		}
	case key.Matches(keyMsg, keys.Undo):
		if !m.todos.Undo() {
			return m, func() tea.Msg {
				return statusMsg{text: "Nothing to undo"}
			}
		}
	case key.Matches(keyMsg, keys.Select), key.Matches(keyMsg, keys.Enter):
		return m.selectForTiming()
	}
	return m, nil
}

// selectForTiming marks the cursor task as the one receiving focused time.
// Selecting the already-selected task clears the selection.
func (m todoModel) selectForTiming() (todoModel, tea.Cmd) {
	idx := m.todos.SelectedIndex()
	name, ok := m.todos.TaskName(idx)
	if !ok {
		return m, nil
	}
	if m.engine.SelectedTaskIndex() == idx {
		m.engine.ClearSelectedTask()
		return m, func() tea.Msg {
			return statusMsg{text: "Task deselected"}
		}
	}
	m.engine.SetSelectedTask(idx, name)
	return m, func() tea.Msg {
		return statusMsg{text: "Timing: " + name}
	}
}

func (m todoModel) view(focused bool) string {
	w := max(m.width-2, 20)

	style := panelStyle
	if focused {
		style = activePanelStyle
	}

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Todo"),
			"",
			m.form.View(),
		)
		return style.Width(w).Height(max(m.height-2, 1)).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Todo"))
	rows = append(rows, "")

	items := m.todos.Items()
	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("  No tasks. Press a to add one."))
	}

	visible := max(m.height-6, 3)
	start := 0
	if m.todos.SelectedIndex() >= visible {
		start = m.todos.SelectedIndex() - visible + 1
	}

	for i := start; i < len(items) && i < start+visible; i++ {
		item := items[i]

		box := "[ ]"
		if item.Done {
			box = "[x]"
		}

		cursor := "  "
		lineStyle := normalItemStyle
		if i == m.todos.SelectedIndex() && focused {
			cursor = "> "
			lineStyle = selectedItemStyle
		}
		if item.Done {
			lineStyle = doneItemStyle
		}

		line := fmt.Sprintf("%s%s %s", cursor, box, item.Task)
		if item.FocusedMinutes > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  (%s)", formatMinutes(item.FocusedMinutes)))
		}
		if i == m.engine.SelectedTaskIndex() {
			line += accentStyle.Render("  ◉")
		}
		rows = append(rows, lineStyle.Render(line))
	}

	return style.Width(w).Height(max(m.height-2, 1)).Render(strings.Join(rows, "\n"))
}
