package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/jmylchreest/dropwatch/internal/logger"
)

// ErrNoChrome is returned when no Chrome or Chromium binary can be located.
var ErrNoChrome = errors.New("no chrome binary found")

// chromeCandidates lists binary names and install locations per platform.
// Names are resolved through PATH, absolute paths are checked directly.
func chromeCandidates(goos string) []string {
	names := []string{
		"google-chrome-stable",
		"google-chrome",
		"chromium",
		"chromium-browser",
		"chrome",
	}
	switch goos {
	case "darwin":
		return append(names,
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		)
	case "windows":
		return append(names,
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		)
	default:
		return append(names,
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		)
	}
}

// FindChromePath returns configured when it is executable, otherwise the
// first Chrome binary found on the system.
func FindChromePath(configured string) (string, error) {
	if configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", fmt.Errorf("configured chrome path %q: %w", configured, err)
		}
		return path, nil
	}

	for _, name := range chromeCandidates(runtime.GOOS) {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path, nil
		}
	}
	return "", ErrNoChrome
}
