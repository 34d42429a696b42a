package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coseforge/cosecore/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("creates default config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.DefaultAlgorithm == "" {
			t.Error("expected non-empty default algorithm")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		cfg := config.DefaultConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})
}

func TestConfigValidation(t *testing.T) {
	t.Run("rejects unrecognized algorithm", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DefaultAlgorithm = "RS256"
		if err := cfg.Validate(); err == nil {
			t.Error("should reject unrecognized default_algorithm")
		}
	})

	t.Run("rejects unrecognized tag mode", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.TagMode = "sometimes"
		if err := cfg.Validate(); err == nil {
			t.Error("should reject unrecognized tag_mode")
		}
	})

	t.Run("accepts empty algorithm and tag mode", func(t *testing.T) {
		cfg := &config.Config{}
		if err := cfg.Validate(); err != nil {
			t.Errorf("empty config should be valid: %v", err)
		}
	})

	t.Run("accepts each recognized algorithm", func(t *testing.T) {
		for _, alg := range []string{"ES256", "ES384", "ES512", "EdDSA", "PS256", "PS384", "PS512"} {
			cfg := config.DefaultConfig()
			cfg.DefaultAlgorithm = alg
			if err := cfg.Validate(); err != nil {
				t.Errorf("algorithm %s should be valid: %v", alg, err)
			}
		}
	})

	t.Run("accepts both tag modes", func(t *testing.T) {
		for _, mode := range []string{"required", "forbidden"} {
			cfg := config.DefaultConfig()
			cfg.TagMode = mode
			if err := cfg.Validate(); err != nil {
				t.Errorf("tag_mode %s should be valid: %v", mode, err)
			}
		}
	})
}

func TestConfigSaveLoad(t *testing.T) {
	t.Run("can save and load config", func(t *testing.T) {
		tempDir := t.TempDir()
		configPath := filepath.Join(tempDir, "config.yaml")

		original := config.DefaultConfig()
		original.DefaultKid = "my-key-1"
		original.TagMode = "required"

		if err := config.SaveConfig(original, configPath); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if loaded.DefaultAlgorithm != original.DefaultAlgorithm {
			t.Errorf("algorithm mismatch: expected %s, got %s", original.DefaultAlgorithm, loaded.DefaultAlgorithm)
		}
		if loaded.DefaultKid != original.DefaultKid {
			t.Errorf("kid mismatch: expected %s, got %s", original.DefaultKid, loaded.DefaultKid)
		}
		if loaded.TagMode != original.TagMode {
			t.Errorf("tag mode mismatch: expected %s, got %s", original.TagMode, loaded.TagMode)
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := config.LoadConfig("/nonexistent/config.yaml")
		if err == nil {
			t.Error("should return error for non-existent file")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tempDir := t.TempDir()
		configPath := filepath.Join(tempDir, "bad.yaml")
		_ = os.WriteFile(configPath, []byte("invalid: yaml: content: [[["), 0644)

		_, err := config.LoadConfig(configPath)
		if err == nil {
			t.Error("should return error for invalid YAML")
		}
	})

	t.Run("returns error for invalid algorithm in file", func(t *testing.T) {
		tempDir := t.TempDir()
		configPath := filepath.Join(tempDir, "badalg.yaml")
		_ = os.WriteFile(configPath, []byte("default_algorithm: RS256\n"), 0644)

		_, err := config.LoadConfig(configPath)
		if err == nil {
			t.Error("should return error for unrecognized algorithm")
		}
	})
}
