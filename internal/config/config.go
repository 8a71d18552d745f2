package config

import (
	"fmt"
	"strings"
)

// Service is the secret store service name for every readmepro secret.
const Service = "readmepro"

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	GitHub  GitHubConfig
	Preview PreviewConfig
	Render  RenderConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type GitHubConfig struct {
	BaseURL      string
	Username     string
	Token        string
	ReposPerPage int
	ImportLimit  int
}

type PreviewConfig struct {
	Style string
	Width int
}

type RenderConfig struct {
	Output string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		GitHub: GitHubConfig{
			BaseURL:      "https://api.github.com",
			ReposPerPage: 50,
			ImportLimit:  10,
		},
		Preview: PreviewConfig{
			Style: "dark",
			Width: 80,
		},
		Render: RenderConfig{
			Output: "README.md",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.readmepro.app) and the
// GitHub token falls back to the macOS Keychain.
// Elsewhere the backend is a YAML file at $XDG_CONFIG_HOME/readmepro/config.yaml
// and the token falls back to $XDG_DATA_HOME/readmepro/secrets.yaml.
//
// Environment variables (READMEPRO_*) override backend values on all
// platforms. The GitHub token is optional: reads work without it and
// publishing reports its absence.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), NewKeychain())
}

// keychain abstracts secret store reads for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.GitHub.Token == "" {
		if tok, err := kc.Get(Service, githubTokenAccount); err == nil && tok != "" {
			cfg.GitHub.Token = tok
		}
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", cfg.Server.Port)
	}
	if cfg.GitHub.ReposPerPage <= 0 || cfg.GitHub.ReposPerPage > 100 {
		return fmt.Errorf("invalid config: github.repos_per_page must be between 1 and 100, got %d", cfg.GitHub.ReposPerPage)
	}
	if cfg.GitHub.ImportLimit < 0 {
		return fmt.Errorf("invalid config: github.import_limit must not be negative")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid config: log.level %q (want debug, info, warn or error)", cfg.Log.Level)
	}
	return nil
}

// MissingTokenHint explains where the GitHub token can be provided.
func MissingTokenHint() string {
	return "no GitHub token configured. Set READMEPRO_GITHUB_TOKEN or run `readmepro config set-token`" + apiKeyHint()
}
