package picker

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given mode,
// providing context-aware help bar content.
func HelpBindings(mode Mode) help.KeyMap {
	switch mode {
	case ModePermission:
		return PermissionKeyMap()
	case ModeLoading:
		return LoadingKeyMap()
	default:
		return BrowseKeyMap()
	}
}
