package picker

import "github.com/charmbracelet/bubbles/key"

// browseKeys holds key bindings for browse mode. Printable keys go to the
// search field, so navigation uses arrows and control chords.
type browseKeys struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Enter    key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

// ShortHelp returns the browse mode bindings for the help bar.
func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Clear, k.Quit}
}

// FullHelp returns the browse mode bindings grouped for expanded help.
func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Enter, k.Clear, k.Quit},
	}
}

// permissionKeys holds key bindings for the access dialog.
type permissionKeys struct {
	Allow key.Binding
	Deny  key.Binding
	Quit  key.Binding
}

// ShortHelp returns the permission mode bindings for the help bar.
func (k permissionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Allow, k.Deny, k.Quit}
}

// FullHelp returns the permission mode bindings grouped for expanded help.
func (k permissionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Allow, k.Deny, k.Quit}}
}

// loadingKeys holds key bindings while contacts load.
type loadingKeys struct {
	Quit key.Binding
}

// ShortHelp returns the loading mode bindings for the help bar.
func (k loadingKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// FullHelp returns the loading mode bindings grouped for expanded help.
func (k loadingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

// BrowseKeyMap returns the key bindings for browse mode.
func BrowseKeyMap() browseKeys {
	return browseKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear/quit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// PermissionKeyMap returns the key bindings for the access dialog.
func PermissionKeyMap() permissionKeys {
	return permissionKeys{
		Allow: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "allow"),
		),
		Deny: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc/n", "deny"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// LoadingKeyMap returns the key bindings while loading.
func LoadingKeyMap() loadingKeys {
	return loadingKeys{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
