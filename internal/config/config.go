// Package config provides configuration loading and validation for srptool.
package config

import (
	"fmt"
	"hash"
	"os"
	"strings"
	"time"

	"github.com/fzdarsky/srp6a/pkg/srp"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// GroupCustom selects the modulus and generator given in the configuration.
const GroupCustom = "custom"

// Extra hash names resolved here in addition to the SHA variants known to
// package srp.
const (
	HashBLAKE2b256 = "blake2b-256"
	HashBLAKE2b512 = "blake2b-512"
)

// EnvVerifierFile overrides store.verifier_file.
const EnvVerifierFile = "SRPTOOL_VERIFIER_FILE"

// Config represents the srptool configuration.
type Config struct {
	SRP     SRPSettings     `yaml:"srp" json:"srp"`
	Store   StoreSettings   `yaml:"store" json:"store"`
	Logging LoggingSettings `yaml:"logging" json:"logging"`
}

// SRPSettings selects the group and hash. A non-empty Preset overrides
// Group and Hash.
type SRPSettings struct {
	Preset     string `yaml:"preset,omitempty" json:"preset,omitempty"`
	Group      string `yaml:"group" json:"group"`
	Modulus    string `yaml:"modulus,omitempty" json:"modulus,omitempty"`
	Generator  string `yaml:"generator,omitempty" json:"generator,omitempty"`
	Hash       string `yaml:"hash" json:"hash"`
	SaltLength int    `yaml:"salt_length" json:"salt_length"`
}

// StoreSettings locates verifier records and bounds pending handshakes.
type StoreSettings struct {
	VerifierFile string `yaml:"verifier_file" json:"verifier_file"`
	HandshakeTTL string `yaml:"handshake_ttl" json:"handshake_ttl"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SRP: SRPSettings{
			Group:      srp.GroupRFC5054_2048,
			Hash:       srp.HashSHA256,
			SaltLength: srp.DefaultSaltLength,
		},
		Store: StoreSettings{
			VerifierFile: "/var/lib/srptool/verifiers.json",
			HandshakeTTL: "5m",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the configuration file and applies it on top of Default.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns Default with environment overrides
// applied when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	cfg := Default()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if path := os.Getenv(EnvVerifierFile); path != "" {
		c.Store.VerifierFile = path
	}
}

// validate performs basic validation on the configuration.
// Detailed validation is in validate.go.
func (c *Config) validate() error {
	if c.SRP.Preset == "" && c.SRP.Group == "" {
		return fmt.Errorf("srp.group is required when srp.preset is not set")
	}

	if c.SRP.Preset == "" && c.SRP.Hash == "" {
		return fmt.Errorf("srp.hash is required when srp.preset is not set")
	}

	if c.SRP.SaltLength < 0 {
		return fmt.Errorf("srp.salt_length must not be negative")
	}

	if c.Store.VerifierFile == "" {
		return fmt.Errorf("store.verifier_file is required")
	}

	if c.Store.HandshakeTTL == "" {
		return fmt.Errorf("store.handshake_ttl is required")
	}

	return nil
}

// GetHandshakeTTL parses and returns how long a pending handshake is kept.
func (c *Config) GetHandshakeTTL() (time.Duration, error) {
	duration, err := time.ParseDuration(c.Store.HandshakeTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid handshake_ttl: %w", err)
	}

	if duration < time.Second {
		return 0, fmt.Errorf("handshake_ttl must be at least 1 second")
	}

	return duration, nil
}

// Params resolves the configured group and hash.
func (c *Config) Params() (srp.Params, error) {
	if c.SRP.Preset != "" {
		return srp.PresetParams(srp.Preset(c.SRP.Preset))
	}

	var group srp.Group
	if c.SRP.Group == GroupCustom {
		if c.SRP.Modulus == "" || c.SRP.Generator == "" {
			return srp.Params{}, fmt.Errorf("%w: custom group requires modulus and generator", srp.ErrInvalidParameter)
		}
		group = srp.Group{Name: GroupCustom, N: c.SRP.Modulus, G: c.SRP.Generator}
	} else {
		g, err := srp.LookupGroup(c.SRP.Group)
		if err != nil {
			return srp.Params{}, err
		}
		group = g
	}

	h, err := ResolveHash(c.SRP.Hash)
	if err != nil {
		return srp.Params{}, err
	}

	return srp.Params{Group: group, Hash: h, HashName: CanonicalHashName(c.SRP.Hash)}, nil
}

// Engine builds the SRP engine for the configured group and hash.
func (c *Config) Engine() (*srp.Engine, error) {
	params, err := c.Params()
	if err != nil {
		return nil, err
	}
	return srp.NewParamsEngine(params)
}

// CanonicalHashName returns the constant name for any accepted spelling of
// a hash, so that "SHA256" and "sha-256" are recorded the same way. Unknown
// names are returned lowercased.
func CanonicalHashName(name string) string {
	if canonical, ok := srp.CanonicalHashName(name); ok {
		return canonical
	}
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "blake2b256":
		return HashBLAKE2b256
	case "blake2b512":
		return HashBLAKE2b512
	default:
		return strings.ToLower(name)
	}
}

// ResolveHash resolves a hash name, including the BLAKE2b variants.
func ResolveHash(name string) (srp.Hash, error) {
	switch CanonicalHashName(name) {
	case HashBLAKE2b256:
		return srp.HashFunc(newBLAKE2b(blake2b.New256)), nil
	case HashBLAKE2b512:
		return srp.HashFunc(newBLAKE2b(blake2b.New512)), nil
	default:
		return srp.LookupHash(name)
	}
}

// newBLAKE2b adapts an unkeyed BLAKE2b constructor. Construction only fails
// for oversized keys, so the error is unreachable with a nil key.
func newBLAKE2b(newKeyed func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := newKeyed(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}
