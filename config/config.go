// Package config loads kaizen.json, the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the project config file looked up in the working directory.
const FileName = "kaizen.json"

const (
	StorageIPFS = "ipfs"
	StorageR2   = "r2"
)

var (
	ErrConfigMissing = errors.New("missing " + FileName + ", you should use 「kaizen set-ipfs」command to setting IPFS configuration")
	ErrIPFSMissing   = errors.New("missing ipfs section in " + FileName + ", you should use 「kaizen set-ipfs」command to setting IPFS configuration")
)

// Config mirrors kaizen.json.
//
// Sources, highest precedence first:
//  1. Environment variables (KAIZEN_*, plus the bare R2_* names)
//  2. kaizen.json
//  3. Defaults
type Config struct {
	// IPFS is the node the upload command talks to. Nil when kaizen.json has no ipfs section.
	IPFS *IPFSConfig `mapstructure:"ipfs"`

	Storage StorageConfig `mapstructure:"storage"`

	// R2 is only used when Storage.Type is "r2"
	R2 R2Config `mapstructure:"r2"`
}

// IPFSConfig locates the IPFS HTTP API.
type IPFSConfig struct {
	Host     string `mapstructure:"host" json:"host" validate:"required,hostname|ip"`
	Port     int    `mapstructure:"port" json:"port" validate:"required,gt=0,lte=65535"`
	Protocol string `mapstructure:"protocol" json:"protocol" validate:"required,oneof=http https"`
}

// URL returns the API base, ex. http://127.0.0.1:5001
func (c *IPFSConfig) URL() string {
	return fmt.Sprintf("%s://%s", c.Protocol, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
}

// StorageConfig selects the content-addressed backend.
type StorageConfig struct {
	// Valid values: ipfs, r2
	Type string `mapstructure:"type" validate:"required,oneof=ipfs r2"`
}

// R2Config configures the S3-compatible blob store.
type R2Config struct {
	BucketName      string `mapstructure:"bucket_name"`
	AccountID       string `mapstructure:"account_id"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`

	// Namespace prefixes every object key
	Namespace string `mapstructure:"namespace" validate:"required"`

	// CacheDir holds kaizen-cache.json, relative to the working directory
	CacheDir string `mapstructure:"cache_dir" validate:"required"`
}

// ResolvedEndpoint returns Endpoint, or the Cloudflare endpoint derived from AccountID.
func (c *R2Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// envKeys lists every key that can come from the environment. The extra
// names are accepted for the R2 section only.
var envKeys = map[string][]string{
	"ipfs.host":            nil,
	"ipfs.port":            nil,
	"ipfs.protocol":        nil,
	"storage.type":         nil,
	"r2.bucket_name":       {"R2_BUCKET_NAME"},
	"r2.account_id":        {"R2_ACCOUNT_ID"},
	"r2.endpoint":          {"R2_ENDPOINT"},
	"r2.access_key_id":     {"R2_ACCESS_KEY_ID"},
	"r2.access_key_secret": {"R2_ACCESS_KEY_SECRET"},
	"r2.namespace":         nil,
	"r2.cache_dir":         nil,
}

// Load reads and validates the config file at configPath.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfigMissing
	} else if err != nil {
		return nil, err
	}

	v := viper.New()
	if err := setupViper(v, configPath); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) error {
	// ex. KAIZEN_IPFS_HOST=127.0.0.1
	v.SetEnvPrefix("KAIZEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range envKeys {
		names := append([]string{"KAIZEN_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, legacy...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}

	v.SetConfigFile(configPath)
	if filepath.Ext(configPath) == "" {
		v.SetConfigType("json")
	}
	return nil
}

// SaveIPFS writes the ipfs section into the config file at configPath,
// keeping whatever else the file already holds.
func SaveIPFS(configPath string, ipfs IPFSConfig) error {
	if err := validate.Struct(&ipfs); err != nil {
		return formatValidationError(err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	v.Set("ipfs.host", ipfs.Host)
	v.Set("ipfs.port", ipfs.Port)
	v.Set("ipfs.protocol", ipfs.Protocol)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
