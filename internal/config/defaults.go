package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errDefaultsUnset is returned by a defaultsRunner when the defaults tool
// exits 1, which it does for a key or domain that has no value.
var errDefaultsUnset = errors.New("defaults: no value")

// defaultsRunner runs the macOS defaults tool with args.
type defaultsRunner func(args ...string) ([]byte, error)

// defaultsBackend keeps config keys in a defaults domain. The defaults
// database is flat, so dotted keys are stored verbatim:
//
//	defaults read com.readmepro.app server.port
type defaultsBackend struct {
	domain string
	run    defaultsRunner
}

func newDefaultsBackend(domain string, run defaultsRunner) *defaultsBackend {
	return &defaultsBackend{domain: domain, run: run}
}

func (b *defaultsBackend) read(key string) (string, bool, error) {
	out, err := b.run("read", b.domain, key)
	if errors.Is(err, errDefaultsUnset) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s from %s: %w", key, b.domain, err)
	}
	return strings.TrimSpace(string(out)), true, nil
}

func (b *defaultsBackend) write(key, kind, val string) error {
	if _, err := b.run("write", b.domain, key, kind, val); err != nil {
		return fmt.Errorf("writing %s to %s: %w", key, b.domain, err)
	}
	return nil
}

func (b *defaultsBackend) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b *defaultsBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (b *defaultsBackend) SetString(key, val string) error {
	return b.write(key, "-string", val)
}

func (b *defaultsBackend) SetInt(key string, val int) error {
	return b.write(key, "-int", strconv.Itoa(val))
}

// Delete removes key. Deleting a key that was never set is not an error,
// matching fileBackend.
func (b *defaultsBackend) Delete(key string) error {
	_, err := b.run("delete", b.domain, key)
	if err != nil && !errors.Is(err, errDefaultsUnset) {
		return fmt.Errorf("deleting %s from %s: %w", key, b.domain, err)
	}
	return nil
}
