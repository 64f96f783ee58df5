// Package config loads spendsmart settings from flags, the environment and
// an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spendsmart/internal/common"
)

// ExpandPath resolves a leading ~ and $VAR references in a user-supplied
// path. An empty path stays empty so callers can fall back to a default.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: cannot expand %q: %w", common.ErrInvalidConfig, path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("%w: %q: only ~ for the current user is supported", common.ErrInvalidConfig, path)
	}

	expanded := os.ExpandEnv(path)
	if strings.TrimSpace(expanded) == "" {
		return "", fmt.Errorf("%w: path %q expands to nothing", common.ErrInvalidConfig, path)
	}
	return filepath.Clean(expanded), nil
}
