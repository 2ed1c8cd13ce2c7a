// ABOUTME: XDG-based data directory resolution for corkboard.
// ABOUTME: Uses XDG_DATA_HOME when set, otherwise ~/.local/share/corkboard.
package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDataDir returns where corkboard keeps its store and remote checkout.
func DefaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "corkboard"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "corkboard"), nil
}
