package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the global key bindings. List and form keys belong to
// the screens.
type KeyMap struct {
	Back Key
	Quit Key
	Help Key

	// Function keys for module navigation
	F1  Key
	F2  Key
	F3  Key
	F4  Key
	F5  Key
	F6  Key
	F10 Key
}

// Key represents a key binding.
type Key struct {
	Keys    []string
	Help    string
	Enabled bool
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Back: Key{
			Keys:    []string{"esc", "backspace"},
			Help:    "back",
			Enabled: true,
		},
		Quit: Key{
			Keys:    []string{"q", "ctrl+c"},
			Help:    "quit",
			Enabled: true,
		},
		Help: Key{
			Keys:    []string{"?"},
			Help:    "help",
			Enabled: true,
		},

		F1: Key{
			Keys:    []string{"f1"},
			Help:    "Help",
			Enabled: true,
		},
		F2: Key{
			Keys:    []string{"f2"},
			Help:    "Trust anchors",
			Enabled: true,
		},
		F3: Key{
			Keys:    []string{"f3"},
			Help:    "ROAs",
			Enabled: true,
		},
		F4: Key{
			Keys:    []string{"f4"},
			Help:    "BGP",
			Enabled: true,
		},
		F5: Key{
			Keys:    []string{"f5"},
			Help:    "Ignore filters",
			Enabled: true,
		},
		F6: Key{
			Keys:    []string{"f6"},
			Help:    "Whitelist",
			Enabled: true,
		},
		F10: Key{
			Keys:    []string{"f10"},
			Help:    "Quit",
			Enabled: true,
		},
	}
}

// Matches checks if a key message matches this key binding.
func (k Key) Matches(msg tea.KeyMsg) bool {
	if !k.Enabled {
		return false
	}

	keyStr := msg.String()
	for _, key := range k.Keys {
		if keyStr == key {
			return true
		}
	}
	return false
}

// MatchesAny checks if a key message matches any of the provided key bindings.
func MatchesAny(msg tea.KeyMsg, keys ...Key) bool {
	for _, k := range keys {
		if k.Matches(msg) {
			return true
		}
	}
	return false
}

// IsQuit checks if the key message is a quit command.
func (km KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return km.Quit.Matches(msg) || km.F10.Matches(msg)
}

// IsFunctionKey checks if the key message is a function key.
func (km KeyMap) IsFunctionKey(msg tea.KeyMsg) bool {
	return MatchesAny(msg, km.F1, km.F2, km.F3, km.F4, km.F5, km.F6, km.F10)
}

// GetFunctionKeyModule returns the module for a function key.
func (km KeyMap) GetFunctionKeyModule(msg tea.KeyMsg) Module {
	switch {
	case km.F1.Matches(msg):
		return ModuleHelp
	case km.F2.Matches(msg):
		return ModuleTrustAnchors
	case km.F3.Matches(msg):
		return ModuleRoas
	case km.F4.Matches(msg):
		return ModuleBgp
	case km.F5.Matches(msg):
		return ModuleIgnoreFilters
	case km.F6.Matches(msg):
		return ModuleWhitelist
	case km.F10.Matches(msg):
		return moduleQuit
	default:
		return ""
	}
}

// StatusBarHelp returns the help text for the status bar.
func (km KeyMap) StatusBarHelp() string {
	return "[F1]Help [F2]Trust anchors [F3]ROAs [F4]BGP [F5]Ignore filters [F6]Whitelist [F10]Quit"
}
