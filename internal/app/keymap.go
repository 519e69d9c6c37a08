package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the navigation-mode bindings. Comment and review input
// have fixed enter/esc handling.
type KeyMap struct {
	Quit          key.Binding
	ToggleFocus   key.Binding
	FocusTree     key.Binding
	FocusContent  key.Binding
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	Open          key.Binding
	ToggleNode    key.Binding
	ExpandAll     key.Binding
	CollapseAll   key.Binding
	ToggleTree    key.Binding
	Visual        key.Binding
	Cancel        key.Binding
	Expand        key.Binding
	Comment       key.Binding
	DeleteComment key.Binding
	Review        key.Binding
	Copy          key.Binding
	Reload        key.Binding
	Help          key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ToggleFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		FocusTree:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "files")),
		FocusContent:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "diff")),
		Up:            key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "move up")),
		Down:          key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "move down")),
		PageUp:        key.NewBinding(key.WithKeys("ctrl+b", "pgup"), key.WithHelp("ctrl-b", "page up")),
		PageDown:      key.NewBinding(key.WithKeys("ctrl+f", "pgdown"), key.WithHelp("ctrl-f", "page down")),
		Top:           key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Open:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/expand")),
		ToggleNode:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "fold dir")),
		ExpandAll:     key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "unfold all")),
		CollapseAll:   key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "fold all")),
		ToggleTree:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "hide/show files")),
		Visual:        key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v", "select lines")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Expand:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "expand context")),
		Comment:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		DeleteComment: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete comment")),
		Review:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit review")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy review")),
		Reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// short lists the bindings shown in the one-line footer.
func (k KeyMap) short() []key.Binding {
	return []key.Binding{k.ToggleFocus, k.Down, k.Open, k.Visual, k.Comment, k.Review, k.Copy, k.Help, k.Quit}
}

func (k KeyMap) full() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help, k.Reload, k.ToggleFocus, k.ToggleTree},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.FocusTree, k.FocusContent, k.Open, k.ToggleNode, k.ExpandAll, k.CollapseAll},
		{k.Visual, k.Cancel, k.Expand, k.Comment, k.DeleteComment},
		{k.Review, k.Copy},
	}
}
