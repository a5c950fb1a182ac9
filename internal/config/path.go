package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "ledgerguard"

// xdgDefaults are used when an XDG variable referenced by a path is unset.
var xdgDefaults = map[string]string{
	"XDG_CONFIG_HOME": "~/.config",
	"XDG_DATA_HOME":   "~/.local/share",
}

// ExpandPath expands a leading ~ and $VAR references. XDG base directory
// variables fall back to their standard locations when unset, so
// "$XDG_CONFIG_HOME/ledgerguard/schemas" always resolves.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.Expand(path, func(name string) string {
		if value := os.Getenv(name); value != "" {
			return value
		}
		return xdgDefaults[name]
	})

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/ledgerguard.
func DefaultConfigDir() string {
	return ExpandPath(filepath.Join("$XDG_CONFIG_HOME", appDir))
}
