package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/pkg/cose"
)

type decryptOptions struct {
	keyHex      string
	messagePath string
	outPath     string
}

// NewDecryptCommand builds the `cosetool decrypt` command (COSE_Encrypt0).
func NewDecryptCommand() *cobra.Command {
	opts := &decryptOptions{}
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a COSE_Encrypt0 message",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := decodeHexKey(opts.keyHex, 16)
			if err != nil {
				return err
			}
			message, err := os.ReadFile(opts.messagePath)
			if err != nil {
				return fmt.Errorf("reading message %s: %w", opts.messagePath, err)
			}
			pt, _, err := cose.Decrypt0(cose.NewStdAdapter(), key, message, cose.Options{})
			if err != nil {
				return fmt.Errorf("decrypting: %w", err)
			}
			if err := os.WriteFile(opts.outPath, pt, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", opts.outPath, err)
			}
			if verbose {
				fmt.Printf("✓ wrote %s (%d bytes)\n", opts.outPath, len(pt))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.keyHex, "key", "", "hex-encoded 128-bit AES-GCM key")
	cmd.Flags().StringVar(&opts.messagePath, "message", "", "path to the COSE_Encrypt0 message")
	cmd.Flags().StringVar(&opts.outPath, "out", "payload.bin", "output path for the decrypted payload")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("message")
	return cmd
}

func decodeHexKey(s string, wantLen int) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding hex key: %w", err)
	}
	if len(b) != wantLen {
		return nil, fmt.Errorf("key must be %d bytes, got %d", wantLen, len(b))
	}
	return b, nil
}
