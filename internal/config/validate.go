package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// maxSaltLength bounds srp.salt_length.
const maxSaltLength = 1024

// Validate performs comprehensive validation on the configuration.
func Validate(cfg *Config) error {
	if err := validateSRP(cfg); err != nil {
		return fmt.Errorf("srp validation failed: %w", err)
	}

	if err := validateStore(cfg); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

func validateSRP(cfg *Config) error {
	if cfg.SRP.Preset != "" && cfg.SRP.Group == GroupCustom {
		return fmt.Errorf("srp.preset cannot be combined with a custom group")
	}

	if cfg.SRP.Group != GroupCustom && (cfg.SRP.Modulus != "" || cfg.SRP.Generator != "") {
		return fmt.Errorf("srp.modulus and srp.generator are only valid with group %q", GroupCustom)
	}

	if cfg.SRP.SaltLength > maxSaltLength {
		return fmt.Errorf("srp.salt_length cannot exceed %d bytes", maxSaltLength)
	}

	// Building the engine checks the group parameters.
	if _, err := cfg.Engine(); err != nil {
		return err
	}

	return nil
}

func validateStore(cfg *Config) error {
	if _, err := cfg.GetHandshakeTTL(); err != nil {
		return err
	}

	if !filepath.IsAbs(cfg.Store.VerifierFile) {
		return fmt.Errorf("verifier_file must be an absolute path")
	}

	dir := filepath.Dir(cfg.Store.VerifierFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("verifier_file directory does not exist: %s", dir)
	}

	return nil
}

func validateLogging(cfg *Config) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "human"}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}
