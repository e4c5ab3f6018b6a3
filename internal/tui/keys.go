package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Complete  key.Binding
	Defer     key.Binding
	Add       key.Binding
	Substack  key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Open      key.Binding
	Left      key.Binding
	Right     key.Binding
	Completed key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
}

var keys = keyMap{
	Complete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "complete")),
	Defer:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "defer")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Substack:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "new substack")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	Delete:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
	Open:      key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open substack")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev substack")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next substack")),
	Completed: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show completed")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back/cancel")),
}
