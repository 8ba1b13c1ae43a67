// Package config loads run settings from viper and expands configured paths.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a configured input, output or database path. A leading
// "~" or "~/" is replaced by the home directory and $VAR references are
// substituted; "~user" forms are left alone. Surrounding whitespace is
// dropped.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
