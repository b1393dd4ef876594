package config

type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	ConfigPath string           `mapstructure:"-"`
}

// RepositoryConfig selects the backend. The address uses the same scheme
// prefixes everywhere: a bare path or "path:" for a git repository,
// "sqlite:" for a database file, "tcp:" or "http(s)://" for a remote
// server. Empty means the per-user default repository.
type RepositoryConfig struct {
	Address string `mapstructure:"address"`
}

type DefaultsConfig struct {
	Currency string `mapstructure:"currency"`
}

func NewDefault() *Config {
	return &Config{
		Repository: RepositoryConfig{Address: ""},
		Defaults:   DefaultsConfig{Currency: "EUR"},
	}
}
