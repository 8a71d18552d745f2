package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockKeychain is a test double for the secret store.
type mockKeychain struct {
	values map[string]string
	err    error
	sets   int
}

func (m *mockKeychain) Get(service, account string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[service+"/"+account]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *mockKeychain) Set(service, account, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.sets++
	m.values[service+"/"+account] = value
	return nil
}

// memBackend is an in-memory ConfigBackend.
type memBackend struct {
	data map[string]any
}

func newMemBackend(kv map[string]any) *memBackend {
	if kv == nil {
		kv = map[string]any{}
	}
	return &memBackend{data: kv}
}

func (b *memBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (b *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	i, ok := v.(int)
	if !ok {
		return 0, true, errors.New("not an int")
	}
	return i, true, nil
}

func (b *memBackend) SetString(key, val string) error { b.data[key] = val; return nil }
func (b *memBackend) SetInt(key string, val int) error { b.data[key] = val; return nil }
func (b *memBackend) Delete(key string) error { delete(b.data, key); return nil }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied for an empty backend.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newMemBackend(nil), &mockKeychain{})
	require.NoError(t, err)

	assert.Equal(t, 4100, cfg.Server.Port)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Equal(t, 50, cfg.GitHub.ReposPerPage)
	assert.Equal(t, 10, cfg.GitHub.ImportLimit)
	assert.Equal(t, "dark", cfg.Preview.Style)
	assert.Equal(t, 80, cfg.Preview.Width)
	assert.Equal(t, "README.md", cfg.Render.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.GitHub.Token)
}

// TestBackendValues verifies values from the backend replace defaults.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := newMemBackend(map[string]any{
		"server.port":           5000,
		"storage.data_dir":      "/tmp/readmepro-test",
		"github.username":       "alice",
		"github.repos_per_page": 20,
		"preview.style":         "light",
	})
	cfg, err := loadWith(b, &mockKeychain{})
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "/tmp/readmepro-test", cfg.Storage.DataDir)
	assert.Equal(t, "alice", cfg.GitHub.Username)
	assert.Equal(t, 20, cfg.GitHub.ReposPerPage)
	assert.Equal(t, "light", cfg.Preview.Style)
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("READMEPRO_SERVER_PORT", "6000")
	t.Setenv("READMEPRO_GITHUB_USERNAME", "env-user")

	b := newMemBackend(map[string]any{"server.port": 5000, "github.username": "file-user"})
	cfg, err := loadWith(b, &mockKeychain{})
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, "env-user", cfg.GitHub.Username)
}

// TestEnvOverride_BadInt keeps the previous value when an env int does not parse.
func TestEnvOverride_BadInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("READMEPRO_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newMemBackend(nil), &mockKeychain{})
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Server.Port)
}

func TestGitHubToken_EnvBeatsKeychain(t *testing.T) {
	clearEnv(t)
	t.Setenv("READMEPRO_GITHUB_TOKEN", "env-token")
	kc := &mockKeychain{values: map[string]string{"readmepro/github_token": "kc-token"}}

	cfg, err := loadWith(newMemBackend(nil), kc)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.GitHub.Token)
}

func TestGitHubToken_KeychainFallback(t *testing.T) {
	clearEnv(t)
	kc := &mockKeychain{values: map[string]string{"readmepro/github_token": "kc-token"}}

	cfg, err := loadWith(newMemBackend(nil), kc)
	require.NoError(t, err)
	assert.Equal(t, "kc-token", cfg.GitHub.Token)
}

func TestGitHubToken_SecretNotReadFromBackend(t *testing.T) {
	clearEnv(t)

	b := newMemBackend(map[string]any{"github.token": "plain-text"})
	cfg, err := loadWith(b, &mockKeychain{})
	require.NoError(t, err)
	assert.Empty(t, cfg.GitHub.Token, "secrets must not come from the backend")
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		kv   map[string]any
		want string
	}{
		{"port", map[string]any{"server.port": 70000}, "server.port"},
		{"per page", map[string]any{"github.repos_per_page": 500}, "repos_per_page"},
		{"log level", map[string]any{"log.level": "loud"}, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadWith(newMemBackend(tt.kv), &mockKeychain{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetAPIToken_GeneratesOnce(t *testing.T) {
	kc := &mockKeychain{}

	first, err := GetAPIToken(kc)
	require.NoError(t, err)
	assert.Len(t, first, 64, "hex-encoded 32 bytes")

	second, err := GetAPIToken(kc)
	require.NoError(t, err)
	assert.Equal(t, first, second, "token changed between calls")
	assert.Equal(t, 1, kc.sets)
}

func TestSetGitHubToken(t *testing.T) {
	kc := &mockKeychain{}
	assert.Error(t, SetGitHubToken(kc, "  "), "blank token")
	require.NoError(t, SetGitHubToken(kc, " ghp_x \n"))
	assert.Equal(t, "ghp_x", kc.values["readmepro/github_token"])
}

func TestSetKey(t *testing.T) {
	b := newMemBackend(nil)

	require.NoError(t, setKeyWith(b, "github.import_limit", "5"))
	assert.Equal(t, 5, b.data["github.import_limit"])
	assert.Error(t, setKeyWith(b, "github.import_limit", "five"), "non-integer value")
	assert.Error(t, setKeyWith(b, "github.token", "x"), "secrets are not settable")
	assert.Error(t, setKeyWith(b, "nope", "x"), "unknown key")
}

func TestShowAll_MasksSecrets(t *testing.T) {
	cfg := defaults()
	cfg.GitHub.Token = "ghp_secret"

	for _, ki := range ShowAll(cfg) {
		if ki.Key == "github.token" {
			assert.Equal(t, "(set)", ki.Value)
		}
		assert.NotContains(t, ki.Value, "ghp_secret", ki.Key)
	}
}
