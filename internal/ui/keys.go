package ui

import "github.com/charmbracelet/bubbles/key"

type selectorKeys struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Choose key.Binding
	Quit   key.Binding
}

func newSelectorKeys() selectorKeys {
	return selectorKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "parent list")),
		Right:  key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "child list")),
		Choose: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k selectorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Choose, k.Quit}
}

func (k selectorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Left, k.Right}, {k.Choose, k.Quit}}
}

type feedKeys struct {
	Reload  key.Binding
	Command key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

func newFeedKeys() feedKeys {
	return feedKeys{
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload /data")),
		Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k feedKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Command, k.Quit}
}

func (k feedKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Reload, k.Command}, {k.Submit, k.Cancel, k.Quit}}
}
