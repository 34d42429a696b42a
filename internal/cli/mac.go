package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/pkg/cose"
)

type macOptions struct {
	keyHex      string
	payloadPath string
	messagePath string
	outPath     string
	verifyOnly  bool
}

// NewMacCommand builds the `cosetool mac` command: computes a COSE_Mac0
// message by default, or verifies one with --verify.
func NewMacCommand() *cobra.Command {
	opts := &macOptions{}
	cmd := &cobra.Command{
		Use:   "mac",
		Short: "Compute or verify a COSE_Mac0 message (HMAC-256)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := decodeHexKey(opts.keyHex, 32)
			if err != nil {
				return err
			}
			if opts.verifyOnly {
				message, err := os.ReadFile(opts.messagePath)
				if err != nil {
					return fmt.Errorf("reading message %s: %w", opts.messagePath, err)
				}
				_, err = cose.VerifyMac0(cose.NewStdAdapter(), key, message, nil, cose.Options{})
				if err != nil {
					return fmt.Errorf("verification failed: %w", err)
				}
				fmt.Println("OK")
				return nil
			}
			payload, err := os.ReadFile(opts.payloadPath)
			if err != nil {
				return fmt.Errorf("reading payload %s: %w", opts.payloadPath, err)
			}
			msg, err := cose.Mac0(cose.NewStdAdapter(), cose.AlgHMAC256, key, payload, false, nil, cose.Options{})
			if err != nil {
				return fmt.Errorf("computing MAC: %w", err)
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
	cmd.Flags().StringVar(&opts.keyHex, "key", "", "hex-encoded 256-bit HMAC key")
	cmd.Flags().StringVar(&opts.payloadPath, "payload", "", "path to the payload to MAC")
	cmd.Flags().StringVar(&opts.messagePath, "message", "", "path to a COSE_Mac0 message to verify")
	cmd.Flags().StringVar(&opts.outPath, "out", "message.cbor", "output path for the COSE_Mac0 message")
	cmd.Flags().BoolVar(&opts.verifyOnly, "verify", false, "verify --message instead of computing a new MAC")
	cmd.MarkFlagRequired("key")
	return cmd
}
