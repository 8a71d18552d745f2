package config

// ConfigBackend stores non-secret keys such as "server.port". macOS uses
// the defaults database; elsewhere it is a YAML file (see fileBackend).
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
