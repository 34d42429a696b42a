package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/pkg/cose"
)

type verifyOptions struct {
	keyPath     string
	messagePath string
	payloadPath string
}

// NewVerifyCommand builds the `cosetool verify` command (COSE_Sign1).
func NewVerifyCommand() *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a COSE_Sign1 message",
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := loadECPublicKey(opts.keyPath)
			if err != nil {
				return err
			}
			message, err := os.ReadFile(opts.messagePath)
			if err != nil {
				return fmt.Errorf("reading message %s: %w", opts.messagePath, err)
			}
			var detached []byte
			if opts.payloadPath != "" {
				detached, err = os.ReadFile(opts.payloadPath)
				if err != nil {
					return fmt.Errorf("reading payload %s: %w", opts.payloadPath, err)
				}
			}
			alg, err := sigAlgForCurve(pub.Curve.Params().Name)
			if err != nil {
				return err
			}
			verifier := &cose.MainVerifier{Alg: alg, Key: pub}
			msg, _, err := cose.Verify1(cose.NewStdAdapter(), []cose.Verifier{verifier}, message, detached, cose.Options{})
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			if verbose {
				fmt.Printf("✓ signature valid, payload: %d bytes\n", len(msg.Payload))
			} else {
				fmt.Println("OK")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.keyPath, "key", "", "path to a PEM EC public key")
	cmd.Flags().StringVar(&opts.messagePath, "message", "", "path to the COSE_Sign1 message")
	cmd.Flags().StringVar(&opts.payloadPath, "payload", "", "path to the detached payload, if any")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("message")
	return cmd
}
