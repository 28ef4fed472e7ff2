package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	StartPause key.Binding
	SkipPhase  key.Binding
	Reset      key.Binding

	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Undo   key.Binding
	Select key.Binding

	PlayPause key.Binding
	NextTrack key.Binding
	PrevTrack key.Binding
	CycleMode key.Binding
	Refresh   key.Binding

	FocusNext key.Binding
	FocusPrev key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding

	Settings key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	StartPause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/pause timer"),
	),
	SkipPhase: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "skip phase"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset timer"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add task"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "toggle done"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete task"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Select: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "time this task"),
	),
	PlayPause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "play/pause music"),
	),
	NextTrack: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "next track"),
	),
	PrevTrack: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "previous track"),
	),
	CycleMode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "playback mode"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "rescan library"),
	),
	FocusNext: key.NewBinding(
		key.WithKeys("tab", "l", "right"),
		key.WithHelp("tab/l", "next panel"),
	),
	FocusPrev: key.NewBinding(
		key.WithKeys("shift+tab", "h", "left"),
		key.WithHelp("h", "previous panel"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Settings: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "settings"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartPause, k.Select, k.PlayPause, k.FocusNext, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartPause, k.SkipPhase, k.Reset},
		{k.Add, k.Toggle, k.Delete, k.Undo, k.Select},
		{k.PlayPause, k.PrevTrack, k.NextTrack, k.CycleMode, k.Refresh},
		{k.FocusNext, k.Up, k.Down, k.Settings, k.Export, k.Quit},
	}
}
