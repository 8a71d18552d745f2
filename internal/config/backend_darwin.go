//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultsDomain = "com.readmepro.app"

func defaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, "Library", "Application Support", "readmepro")
	}
	return "readmepro-data"
}

func apiKeyHint() string {
	return " or store it in the macOS Keychain (service: readmepro, account: github_token)"
}

func newPlatformBackend() ConfigBackend {
	return newDefaultsBackend(defaultsDomain, execDefaults)
}

func execDefaults(args ...string) ([]byte, error) {
	out, err := exec.Command("defaults", args...).CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && args[0] != "write" {
		return out, errDefaultsUnset
	}
	if err != nil {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return out, nil
}
