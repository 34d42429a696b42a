package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/internal/config"
)

// Global flags
var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// NewRootCommand creates the root cobra command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cosetool",
		Short: "COSE message codec CLI",
		Long: `cosetool builds and inspects CBOR Object Signing and Encryption (COSE)
messages as defined in RFC 9052/9053:
  - Generate EC P-256/P-384/P-521 key pairs
  - Sign and verify COSE_Sign1 messages
  - Encrypt and decrypt COSE_Encrypt0 messages
  - MAC and verify COSE_Mac0 messages
  - Inspect a message's header parameters without verifying it`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cosetool.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(NewKeygenCommand())
	rootCmd.AddCommand(NewSignCommand())
	rootCmd.AddCommand(NewVerifyCommand())
	rootCmd.AddCommand(NewEncryptCommand())
	rootCmd.AddCommand(NewDecryptCommand())
	rootCmd.AddCommand(NewMacCommand())
	rootCmd.AddCommand(NewInspectCommand())

	return rootCmd
}

// initConfig loads configuration from file.
func initConfig() {
	if cfgFile == "" {
		if _, err := os.Stat("cosetool.yaml"); err == nil {
			cfgFile = "cosetool.yaml"
		} else if _, err := os.Stat("cosetool.yml"); err == nil {
			cfgFile = "cosetool.yml"
		}
	}

	if cfgFile != "" {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			}
		}
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
