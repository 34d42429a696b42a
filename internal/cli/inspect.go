package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/pkg/cose"
)

// NewInspectCommand builds the `cosetool inspect` command: decodes a
// message's header parameters without attempting verification/decryption
// (cose.Options.DecodeOnly), useful for debugging a message a caller
// doesn't yet hold keys for.
func NewInspectCommand() *cobra.Command {
	var messagePath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the header parameters of a COSE message without verifying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := os.ReadFile(messagePath)
			if err != nil {
				return fmt.Errorf("reading message %s: %w", messagePath, err)
			}
			opts := cose.Options{DecodeOnly: true}
			if msg, derr := cose.DecodeSign1(message, opts); derr == nil {
				fmt.Println("type: COSE_Sign1")
				printHeaders(msg.Head)
				return nil
			}
			if msg, derr := cose.DecodeSign(message, opts); derr == nil {
				fmt.Println("type: COSE_Sign")
				printHeaders(msg.Head)
				for i, s := range msg.Signatures {
					fmt.Printf("  signature[%d]:\n", i)
					printHeaders(s.Head)
				}
				return nil
			}
			if msg, derr := cose.DecodeEncrypt0(message, opts); derr == nil {
				fmt.Println("type: COSE_Encrypt0")
				printHeaders(msg.Head)
				return nil
			}
			if msg, derr := cose.DecodeEncrypt(message, opts); derr == nil {
				fmt.Println("type: COSE_Encrypt")
				printHeaders(msg.Head)
				return nil
			}
			if msg, derr := cose.DecodeMac0(message, opts); derr == nil {
				fmt.Println("type: COSE_Mac0")
				printHeaders(msg.Head)
				return nil
			}
			if msg, derr := cose.DecodeMac(message, opts); derr == nil {
				fmt.Println("type: COSE_Mac")
				printHeaders(msg.Head)
				return nil
			}
			return fmt.Errorf("%s is not a recognized COSE message", messagePath)
		},
	}
	cmd.Flags().StringVar(&messagePath, "message", "", "path to the COSE message")
	cmd.MarkFlagRequired("message")
	return cmd
}

func printHeaders(head *cose.Param) {
	for n := head; n != nil; n = n.Next {
		bucket := "unprotected"
		if n.InProtected {
			bucket = "protected"
		}
		label := fmt.Sprintf("%d", n.Label.Int)
		if n.Label.IsText {
			label = n.Label.Text
		}
		fmt.Printf("  [%s] label=%s kind=%d critical=%v unknown=%v\n", bucket, label, n.Kind, n.Critical, n.Unknown)
	}
	if certs, ok, err := cose.DecodeX5Chain(head); err == nil && ok {
		fmt.Printf("  x5chain: %d certificate(s), not parsed or validated\n", len(certs))
	}
}
