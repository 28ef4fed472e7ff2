package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kursadm/tomatui/internal/playback"
)

type playerModel struct {
	engine *playback.Engine
	width  int
	height int
}

func newPlayerModel(e *playback.Engine) playerModel {
	return playerModel{engine: e}
}

func (m *playerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m playerModel) update(msg tea.Msg) (playerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		m.engine.MoveSelection(-1)
	case key.Matches(keyMsg, keys.Down):
		m.engine.MoveSelection(1)
	case key.Matches(keyMsg, keys.Enter):
		m.engine.Play(m.engine.Selected())
	case key.Matches(keyMsg, keys.PlayPause):
		m.engine.TogglePlayPause()
	case key.Matches(keyMsg, keys.NextTrack):
		m.engine.Next()
	case key.Matches(keyMsg, keys.PrevTrack):
		m.engine.Previous()
	case key.Matches(keyMsg, keys.CycleMode):
		m.engine.CyclePlaybackMode()
		return m, func() tea.Msg {
			return statusMsg{text: "Playback mode: " + m.engine.Mode().String()}
		}
	case key.Matches(keyMsg, keys.Refresh):
		m.engine.RefreshLibrary()
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Library rescanned: %d tracks", len(m.engine.Tracks()))}
		}
	}
	return m, nil
}

func (m playerModel) view(focused bool) string {
	w := max(m.width-2, 20)

	header := fmt.Sprintf("%s  %s", titleStyle.Render("Player"), mutedStyle.Render(m.engine.Mode().String()))

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	tracks := m.engine.Tracks()
	visible := max(m.height-6, 3)
	start := 0
	if m.engine.Selected() >= visible {
		start = m.engine.Selected() - visible + 1
	}

	for i := start; i < len(tracks) && i < start+visible; i++ {
		t := tracks[i]

		cursor := "  "
		lineStyle := normalItemStyle
		if i == m.engine.Selected() && focused {
			cursor = "> "
			lineStyle = selectedItemStyle
		}
		if t.Sentinel() {
			lineStyle = mutedStyle
		}

		marker := "  "
		if i == m.engine.Playing() {
			switch m.engine.State() {
			case playback.StatePlaying:
				marker = successStyle.Render("▶ ")
			case playback.StatePaused:
				marker = warningStyle.Render("⏸ ")
			}
		}

		rows = append(rows, lineStyle.Render(cursor+marker+t.Name))
	}

	rows = append(rows, "")
	rows = append(rows, m.renderStatus())

	style := panelStyle
	if focused {
		style = activePanelStyle
	}
	return style.Width(w).Height(max(m.height-2, 1)).Render(strings.Join(rows, "\n"))
}

func (m playerModel) renderStatus() string {
	playing := m.engine.Playing()
	tracks := m.engine.Tracks()
	if playing < 0 || playing >= len(tracks) {
		return mutedStyle.Render("  enter: play  p: pause  m: mode")
	}

	state := "playing"
	if m.engine.State() == playback.StatePaused {
		state = "paused"
	}
	return mutedStyle.Render(fmt.Sprintf("  %s: %s", state, tracks[playing].Name))
}
