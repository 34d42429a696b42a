package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coseforge/cosecore/internal/cli"
)

func TestKeygenCommand(t *testing.T) {
	t.Run("generates default P-256 key files", func(t *testing.T) {
		tmpDir := t.TempDir()
		oldDir, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(oldDir)
		if err := os.Chdir(tmpDir); err != nil {
			t.Fatalf("failed to change to temp directory: %v", err)
		}

		rootCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
		rootCmd.SetArgs([]string{"keygen"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("failed to execute command: %v", err)
		}

		if _, err := os.Stat("cose-private.pem"); os.IsNotExist(err) {
			t.Error("cose-private.pem was not created")
		}
		if _, err := os.Stat("cose-public.pem"); os.IsNotExist(err) {
			t.Error("cose-public.pem was not created")
		}
	})

	t.Run("honors a custom prefix and curve", func(t *testing.T) {
		tmpDir := t.TempDir()
		prefix := filepath.Join(tmpDir, "issuer")

		rootCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
		rootCmd.SetArgs([]string{"keygen", "--curve", "P-384", "--out", prefix})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("failed to execute command: %v", err)
		}

		if _, err := os.Stat(prefix + "-private.pem"); os.IsNotExist(err) {
			t.Error("custom-prefixed private key was not created")
		}
		if _, err := os.Stat(prefix + "-public.pem"); os.IsNotExist(err) {
			t.Error("custom-prefixed public key was not created")
		}
	})

	t.Run("rejects an unsupported curve", func(t *testing.T) {
		tmpDir := t.TempDir()
		prefix := filepath.Join(tmpDir, "bad")

		rootCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
		rootCmd.SetArgs([]string{"keygen", "--curve", "P-224", "--out", prefix})
		if err := rootCmd.Execute(); err == nil {
			t.Error("expected an error for an unsupported curve")
		}
	})

	t.Run("generates different keys on each run", func(t *testing.T) {
		tmpDir := t.TempDir()
		prefix1 := filepath.Join(tmpDir, "a")
		prefix2 := filepath.Join(tmpDir, "b")

		rootCmd1 := cli.NewRootCommand("test", "abc123", "2026-01-01")
		rootCmd1.SetArgs([]string{"keygen", "--out", prefix1})
		if err := rootCmd1.Execute(); err != nil {
			t.Fatalf("failed to execute command 1: %v", err)
		}

		rootCmd2 := cli.NewRootCommand("test", "abc123", "2026-01-01")
		rootCmd2.SetArgs([]string{"keygen", "--out", prefix2})
		if err := rootCmd2.Execute(); err != nil {
			t.Fatalf("failed to execute command 2: %v", err)
		}

		priv1, err := os.ReadFile(prefix1 + "-private.pem")
		if err != nil {
			t.Fatalf("reading private key 1: %v", err)
		}
		priv2, err := os.ReadFile(prefix2 + "-private.pem")
		if err != nil {
			t.Fatalf("reading private key 2: %v", err)
		}
		if string(priv1) == string(priv2) {
			t.Error("generated identical private keys")
		}
	})
}
