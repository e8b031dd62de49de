// Package fsutil holds small filesystem helpers shared by the config layer
// and the drivers. Cache and model directories are configured with '~'
// shorthand ("~/models/gemma", "~/.cache/assistd/responses"), which the
// standard library does not expand.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome resolves a leading '~' against the current user's home
// directory. Paths without the prefix come back untouched.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	rest := strings.TrimPrefix(path, "~")
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return home, nil
	}
	return filepath.Join(home, rest), nil
}

// PathExists reports whether path can be stat'd. Permission errors count as
// existing so a driver load surfaces the real error instead of "not found".
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
