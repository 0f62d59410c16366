package config

import "time"

// DefaultConfigFile is the configuration file read when --config is not set.
const DefaultConfigFile = ".compatbrowse.yml"

// EnvPrefix prefixes environment overrides. Nesting levels are separated by
// a double underscore: COMPATBROWSE_API__BASE_URL sets api.base_url.
const EnvPrefix = "COMPATBROWSE_"

// Config is the top-level compatbrowse configuration, corresponding to
// .compatbrowse.yml.
type Config struct {
	API      APIConfig      `yaml:"api" koanf:"api"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Cache    CacheConfig    `yaml:"cache" koanf:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot" koanf:"snapshot"`
	Offline  bool           `yaml:"offline" koanf:"offline"`
}

// APIConfig locates the compatibility JSON-API backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" koanf:"base_url"`
	Namespace string        `yaml:"namespace" koanf:"namespace"`
	Timeout   time.Duration `yaml:"timeout" koanf:"timeout"`
}

// ServerConfig holds web frontend settings.
type ServerConfig struct {
	Port     int    `yaml:"port" koanf:"port"`
	RootURL  string `yaml:"root_url" koanf:"root_url"`
	AllowAll bool   `yaml:"allow_all" koanf:"allow_all"`
}

// CacheConfig sizes the client record cache.
type CacheConfig struct {
	Size   int `yaml:"size" koanf:"size"`
	Fanout int `yaml:"fanout" koanf:"fanout"`
}

// SnapshotConfig holds offline snapshot settings.
type SnapshotConfig struct {
	Path        string `yaml:"path" koanf:"path"`
	Concurrency int    `yaml:"concurrency" koanf:"concurrency"`
	PageSize    int    `yaml:"page_size" koanf:"page_size"`
}
