//nolint:gosec // G306: Test files use standard permissions
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fzdarsky/srp6a/internal/config"
	"github.com/fzdarsky/srp6a/pkg/srp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	storeDir := t.TempDir()
	verifierFile := filepath.Join(storeDir, "verifiers.json")

	path := writeConfig(t, `
srp:
  group: rfc5054_3072
  hash: sha-512
  salt_length: 32
store:
  verifier_file: "`+verifierFile+`"
  handshake_ttl: 90s
logging:
  level: debug
  format: human
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, srp.GroupRFC5054_3072, cfg.SRP.Group)
	assert.Equal(t, "sha-512", cfg.SRP.Hash)
	assert.Equal(t, 32, cfg.SRP.SaltLength)
	assert.Equal(t, verifierFile, cfg.Store.VerifierFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "human", cfg.Logging.Format)

	ttl, err := cfg.GetHandshakeTTL()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, ttl)

	require.NoError(t, config.Validate(cfg))

	engine, err := cfg.Engine()
	require.NoError(t, err)
	assert.Equal(t, 3072, engine.NBits())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, srp.GroupRFC5054_2048, cfg.SRP.Group)
	assert.Equal(t, srp.HashSHA256, cfg.SRP.Hash)
	assert.Equal(t, srp.DefaultSaltLength, cfg.SRP.SaltLength)
	assert.Equal(t, "5m", cfg.Store.HandshakeTTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "override.json")
	t.Setenv(config.EnvVerifierFile, override)

	cfg, err := config.Load(writeConfig(t, "store:\n  verifier_file: /nonexistent/verifiers.json\n"))
	require.NoError(t, err)
	assert.Equal(t, override, cfg.Store.VerifierFile)
}

func TestLoadOrDefault(t *testing.T) {
	override := filepath.Join(t.TempDir(), "verifiers.json")
	t.Setenv(config.EnvVerifierFile, override)

	cfg, err := config.LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, override, cfg.Store.VerifierFile)
	assert.Equal(t, srp.GroupRFC5054_2048, cfg.SRP.Group)

	cfg, err = config.LoadOrDefault(writeConfig(t, "srp:\n  salt_length: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.SRP.SaltLength)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "srp: [",
			wantErr: "failed to parse config file",
		},
		{
			name:    "negative salt length",
			content: "srp:\n  salt_length: -1\n",
			wantErr: "srp.salt_length must not be negative",
		},
		{
			name:    "missing group",
			content: "srp:\n  group: \"\"\n",
			wantErr: "srp.group is required",
		},
		{
			name:    "empty verifier file",
			content: "store:\n  verifier_file: \"\"\n",
			wantErr: "store.verifier_file is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_Params(t *testing.T) {
	group1024, err := srp.LookupGroup(srp.GroupRFC5054_1024)
	require.NoError(t, err)

	tests := []struct {
		name      string
		settings  config.SRPSettings
		bits      int
		hashName  string
		digestLen int
	}{
		{
			name:      "preset overrides group",
			settings:  config.SRPSettings{Preset: "high-security", Group: srp.GroupRFC5054_1024, Hash: "sha-1"},
			bits:      3072,
			hashName:  srp.HashSHA512,
			digestLen: 64,
		},
		{
			name:      "named group",
			settings:  config.SRPSettings{Group: srp.GroupRFC5054_1536, Hash: "SHA-256"},
			bits:      1536,
			hashName:  srp.HashSHA256,
			digestLen: 32,
		},
		{
			name:      "blake2b-256",
			settings:  config.SRPSettings{Group: srp.GroupRFC5054_2048, Hash: config.HashBLAKE2b256},
			bits:      2048,
			hashName:  config.HashBLAKE2b256,
			digestLen: 32,
		},
		{
			name:      "blake2b-512",
			settings:  config.SRPSettings{Group: srp.GroupRFC5054_2048, Hash: config.HashBLAKE2b512},
			bits:      2048,
			hashName:  config.HashBLAKE2b512,
			digestLen: 64,
		},
		{
			name: "custom group",
			settings: config.SRPSettings{
				Group:     config.GroupCustom,
				Modulus:   group1024.N,
				Generator: group1024.G,
				Hash:      "sha-1",
			},
			bits:      1024,
			hashName:  "sha-1",
			digestLen: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.SRP = tt.settings

			params, err := cfg.Params()
			require.NoError(t, err)
			assert.Equal(t, tt.hashName, params.HashName)
			assert.Len(t, params.Hash([]byte("abc")), tt.digestLen)

			engine, err := cfg.Engine()
			require.NoError(t, err)
			assert.Equal(t, tt.bits, engine.NBits())
		})
	}
}

func TestConfig_ParamsCanonicalHashName(t *testing.T) {
	tests := []struct {
		spellings []string
		expected  string
	}{
		{spellings: []string{"sha-256", "sha256", "SHA-256", "SHA256"}, expected: srp.HashSHA256},
		{spellings: []string{"sha-1", "SHA1"}, expected: srp.HashSHA1},
		{spellings: []string{"sha512", "Sha-512"}, expected: srp.HashSHA512},
		{spellings: []string{"blake2b-256", "BLAKE2b256"}, expected: config.HashBLAKE2b256},
		{spellings: []string{"blake2b512"}, expected: config.HashBLAKE2b512},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			for _, spelling := range tt.spellings {
				cfg := config.Default()
				cfg.SRP.Hash = spelling

				params, err := cfg.Params()
				require.NoError(t, err, spelling)
				assert.Equal(t, tt.expected, params.HashName, spelling)
			}
		})
	}
}

func TestConfig_ParamsErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings config.SRPSettings
	}{
		{name: "unknown preset", settings: config.SRPSettings{Preset: "legacy"}},
		{name: "unknown group", settings: config.SRPSettings{Group: "rfc5054_512", Hash: "sha-256"}},
		{name: "unknown hash", settings: config.SRPSettings{Group: srp.GroupRFC5054_2048, Hash: "md5"}},
		{name: "custom without modulus", settings: config.SRPSettings{Group: config.GroupCustom, Generator: "2", Hash: "sha-256"}},
		{name: "custom weak modulus", settings: config.SRPSettings{Group: config.GroupCustom, Modulus: "FFFFFFFFFFFFFFC5", Generator: "2", Hash: "sha-256"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.SRP = tt.settings

			_, err := cfg.Engine()
			assert.ErrorIs(t, err, srp.ErrInvalidParameter)
		})
	}
}

func TestGetHandshakeTTL(t *testing.T) {
	cfg := config.Default()

	cfg.Store.HandshakeTTL = "soon"
	_, err := cfg.GetHandshakeTTL()
	assert.ErrorContains(t, err, "invalid handshake_ttl")

	cfg.Store.HandshakeTTL = "10ms"
	_, err = cfg.GetHandshakeTTL()
	assert.ErrorContains(t, err, "at least 1 second")
}

func TestValidate(t *testing.T) {
	storeDir := t.TempDir()

	valid := func() *config.Config {
		cfg := config.Default()
		cfg.Store.VerifierFile = filepath.Join(storeDir, "verifiers.json")
		return cfg
	}

	require.NoError(t, config.Validate(valid()))

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "relative verifier file",
			mutate:  func(c *config.Config) { c.Store.VerifierFile = "verifiers.json" },
			wantErr: "verifier_file must be an absolute path",
		},
		{
			name:    "missing verifier directory",
			mutate:  func(c *config.Config) { c.Store.VerifierFile = filepath.Join(storeDir, "nope", "v.json") },
			wantErr: "verifier_file directory does not exist",
		},
		{
			name:    "modulus without custom group",
			mutate:  func(c *config.Config) { c.SRP.Modulus = "ff" },
			wantErr: "only valid with group",
		},
		{
			name:    "preset with custom group",
			mutate:  func(c *config.Config) { c.SRP.Preset = "default"; c.SRP.Group = config.GroupCustom },
			wantErr: "cannot be combined",
		},
		{
			name:    "oversized salt",
			mutate:  func(c *config.Config) { c.SRP.SaltLength = 4096 },
			wantErr: "salt_length cannot exceed",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "trace" },
			wantErr: "logging.level must be one of",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
