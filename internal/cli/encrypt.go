package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/pkg/cose"
)

type encryptOptions struct {
	keyHex      string
	payloadPath string
	outPath     string
}

// NewEncryptCommand builds the `cosetool encrypt` command (COSE_Encrypt0,
// single shared symmetric key; no key-ID lookup database, so keys are
// supplied directly on the command line for this CLI).
func NewEncryptCommand() *cobra.Command {
	opts := &encryptOptions{}
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a payload as a COSE_Encrypt0 message (A128GCM)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := decodeHexKey(opts.keyHex, 16)
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(opts.payloadPath)
			if err != nil {
				return fmt.Errorf("reading payload %s: %w", opts.payloadPath, err)
			}
			msg, err := cose.Encrypt0(cose.NewStdAdapter(), cose.AlgA128GCM, key, payload, nil, cose.Options{})
			if err != nil {
				return fmt.Errorf("encrypting: %w", err)
			}
			if err := os.WriteFile(opts.outPath, msg, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", opts.outPath, err)
			}
			if verbose {
				fmt.Printf("✓ wrote %s (%d bytes)\n", opts.outPath, len(msg))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.keyHex, "key", "", "hex-encoded 128-bit AES-GCM key")
	cmd.Flags().StringVar(&opts.payloadPath, "payload", "", "path to the plaintext payload")
	cmd.Flags().StringVar(&opts.outPath, "out", "message.cbor", "output path for the COSE_Encrypt0 message")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("payload")
	return cmd
}
