package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	New     key.Binding
	Catalog key.Binding
	Refresh key.Binding
	Delete  key.Binding
	Quit    key.Binding
	ForceQ  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Catalog: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "catalog")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQ:  key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// bindings adapts a fixed list of bindings to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding {
	return b
}

func (b bindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{b}
}

func (k keyMap) forView(v View) bindings {
	switch v {
	case ViewSessionList:
		return bindings{k.Enter, k.New, k.Catalog, k.Delete, k.Refresh, k.Quit}
	case ViewSessionDetail:
		return bindings{k.Up, k.Down, k.Back}
	case ViewPipelines:
		withRun := k.Enter
		withRun.SetHelp("enter", "assemble & export")
		return bindings{k.Up, k.Down, withRun, k.Back}
	case ViewCatalog:
		return bindings{k.Up, k.Down, k.Back}
	}
	return nil
}
