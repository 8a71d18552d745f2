package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "READMEPRO_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "READMEPRO_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "github.base_url", typ: kString, env: "READMEPRO_GITHUB_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.GitHub.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.BaseURL },
	},
	{
		key: "github.username", typ: kString, env: "READMEPRO_GITHUB_USERNAME",
		apply:   func(cfg *Config, v any) { cfg.GitHub.Username = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Username },
	},
	{
		key: "github.token", typ: kString, env: "READMEPRO_GITHUB_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.GitHub.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Token },
	},
	{
		key: "github.repos_per_page", typ: kInt, env: "READMEPRO_GITHUB_REPOS_PER_PAGE",
		apply:   func(cfg *Config, v any) { cfg.GitHub.ReposPerPage = v.(int) },
		extract: func(cfg Config) any { return cfg.GitHub.ReposPerPage },
	},
	{
		key: "github.import_limit", typ: kInt, env: "READMEPRO_GITHUB_IMPORT_LIMIT",
		apply:   func(cfg *Config, v any) { cfg.GitHub.ImportLimit = v.(int) },
		extract: func(cfg Config) any { return cfg.GitHub.ImportLimit },
	},
	{
		key: "preview.style", typ: kString, env: "READMEPRO_PREVIEW_STYLE",
		apply:   func(cfg *Config, v any) { cfg.Preview.Style = v.(string) },
		extract: func(cfg Config) any { return cfg.Preview.Style },
	},
	{
		key: "preview.width", typ: kInt, env: "READMEPRO_PREVIEW_WIDTH",
		apply:   func(cfg *Config, v any) { cfg.Preview.Width = v.(int) },
		extract: func(cfg Config) any { return cfg.Preview.Width },
	},
	{
		key: "render.output", typ: kString, env: "READMEPRO_RENDER_OUTPUT",
		apply:   func(cfg *Config, v any) { cfg.Render.Output = v.(string) },
		extract: func(cfg Config) any { return cfg.Render.Output },
	},
	{
		key: "log.level", typ: kString, env: "READMEPRO_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
