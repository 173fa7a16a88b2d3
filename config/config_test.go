package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_IPFS(t *testing.T) {
	p := writeConfig(t, `{"ipfs": {"host": "127.0.0.1", "port": 5001, "protocol": "http"}}`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.IPFS)
	assert.Equal(t, "http://127.0.0.1:5001", cfg.IPFS.URL())
	assert.Equal(t, StorageIPFS, cfg.Storage.Type)
	assert.Equal(t, DefaultNamespace, cfg.R2.Namespace)
	assert.Equal(t, DefaultCacheDir, cfg.R2.CacheDir)
}

func TestLoad_IPFSDefaults(t *testing.T) {
	p := writeConfig(t, `{"ipfs": {"host": "ipfs.example.com"}}`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultIPFSPort, cfg.IPFS.Port)
	assert.Equal(t, "http://ipfs.example.com:5001", cfg.IPFS.URL())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.True(t, errors.Is(err, ErrConfigMissing))
}

func TestLoad_NoIPFSSection(t *testing.T) {
	p := writeConfig(t, `{}`)

	_, err := Load(p)
	assert.True(t, errors.Is(err, ErrIPFSMissing))
}

func TestLoad_InvalidProtocol(t *testing.T) {
	p := writeConfig(t, `{"ipfs": {"host": "127.0.0.1", "port": 5001, "protocol": "ftp"}}`)

	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Protocol")
}

func TestLoad_InvalidJSON(t *testing.T) {
	p := writeConfig(t, `{"ipfs": `)

	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, `{"ipfs": {"host": "127.0.0.1", "port": 5001, "protocol": "http"}}`)
	t.Setenv("KAIZEN_IPFS_HOST", "node.internal")
	t.Setenv("KAIZEN_IPFS_PORT", "8080")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://node.internal:8080", cfg.IPFS.URL())
}

func TestLoad_R2FromLegacyEnv(t *testing.T) {
	p := writeConfig(t, `{"storage": {"type": "r2"}, "r2": {"namespace": "site"}}`)
	t.Setenv("R2_BUCKET_NAME", "artifacts")
	t.Setenv("R2_ACCOUNT_ID", "abc123")
	t.Setenv("R2_ACCESS_KEY_ID", "id")
	t.Setenv("KAIZEN_R2_ACCESS_KEY_SECRET", "secret")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Nil(t, cfg.IPFS)
	assert.Equal(t, "artifacts", cfg.R2.BucketName)
	assert.Equal(t, "site", cfg.R2.Namespace)
	assert.Equal(t, "https://abc123.r2.cloudflarestorage.com", cfg.R2.ResolvedEndpoint())
}

func TestValidate_R2Rules(t *testing.T) {
	base := func() *Config {
		cfg := &Config{
			Storage: StorageConfig{Type: StorageR2},
			R2: R2Config{
				BucketName:      "b",
				Endpoint:        "https://r2.example.com",
				AccessKeyID:     "id",
				AccessKeySecret: "secret",
			},
		}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no bucket", mutate: func(c *Config) { c.R2.BucketName = "" }, wantErr: "bucket_name"},
		{name: "no endpoint", mutate: func(c *Config) { c.R2.Endpoint = "" }, wantErr: "endpoint or account_id"},
		{name: "account id only", mutate: func(c *Config) { c.R2.Endpoint = ""; c.R2.AccountID = "acc" }},
		{name: "no secret", mutate: func(c *Config) { c.R2.AccessKeySecret = "" }, wantErr: "access_key_secret"},
		{name: "bad endpoint", mutate: func(c *Config) { c.R2.Endpoint = "not a url" }, wantErr: "Endpoint"},
		{name: "bad type", mutate: func(c *Config) { c.Storage.Type = "s4" }, wantErr: "Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveIPFS_CreatesAndPreserves(t *testing.T) {
	p := writeConfig(t, `{"storage": {"type": "ipfs"}, "ipfs": {"host": "old.example.com", "port": 1, "protocol": "http"}}`)

	require.NoError(t, SaveIPFS(p, IPFSConfig{Host: "127.0.0.1", Port: 5001, Protocol: "https"}))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://127.0.0.1:5001", cfg.IPFS.URL())
	assert.Equal(t, StorageIPFS, cfg.Storage.Type)
}

func TestSaveIPFS_NewFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)

	require.NoError(t, SaveIPFS(p, IPFSConfig{Host: "localhost", Port: 5001, Protocol: "http"}))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.IPFS.Host)
}

func TestSaveIPFS_RejectsInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)

	err := SaveIPFS(p, IPFSConfig{Host: "127.0.0.1", Port: 70000, Protocol: "http"})
	require.Error(t, err)
	assert.NoFileExists(t, p)
}
