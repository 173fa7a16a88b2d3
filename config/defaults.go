package config

import "strings"

const (
	DefaultIPFSPort     = 5001
	DefaultIPFSProtocol = "http"
	DefaultNamespace    = "kaizen"
	DefaultCacheDir     = ".kaizen"
)

// ApplyDefaults fills in values kaizen.json and the environment left empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = StorageIPFS
	}
	cfg.Storage.Type = strings.ToLower(cfg.Storage.Type)

	if cfg.IPFS != nil {
		if cfg.IPFS.Port == 0 {
			cfg.IPFS.Port = DefaultIPFSPort
		}
		if cfg.IPFS.Protocol == "" {
			cfg.IPFS.Protocol = DefaultIPFSProtocol
		}
		cfg.IPFS.Protocol = strings.ToLower(cfg.IPFS.Protocol)
	}

	if cfg.R2.Namespace == "" {
		cfg.R2.Namespace = DefaultNamespace
	}
	if cfg.R2.CacheDir == "" {
		cfg.R2.CacheDir = DefaultCacheDir
	}
}
