package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Namespace: "api/v1",
			Timeout:   30 * time.Second,
		},
		Server: ServerConfig{
			Port:    8080,
			RootURL: "/browse",
		},
		Cache: CacheConfig{
			Size:   4096,
			Fanout: 4,
		},
		Snapshot: SnapshotConfig{
			Path:        "data/compat.db",
			Concurrency: 4,
			PageSize:    10,
		},
	}
}
