package cli

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type keygenOptions struct {
	curve     string
	outPrefix string
}

// NewKeygenCommand builds the `cosetool keygen` command: generates an EC
// key pair and writes it out as PEM (options struct with flag defaults,
// RunE closure, verbose-gated stdout).
func NewKeygenCommand() *cobra.Command {
	opts := &keygenOptions{curve: "P-256", outPrefix: "cose"}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an EC key pair for COSE signing",
		RunE: func(cmd *cobra.Command, args []string) error {
			curve, err := curveFor(opts.curve)
			if err != nil {
				return err
			}
			priv, err := ecdsa.GenerateKey(curve, rand.Reader)
			if err != nil {
				return fmt.Errorf("generating key: %w", err)
			}

			privDER, err := x509.MarshalPKCS8PrivateKey(priv)
			if err != nil {
				return fmt.Errorf("marshaling private key: %w", err)
			}
			privPath := opts.outPrefix + "-private.pem"
			if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", privPath, err)
			}

			pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
			if err != nil {
				return fmt.Errorf("marshaling public key: %w", err)
			}
			pubPath := opts.outPrefix + "-public.pem"
			if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", pubPath, err)
			}

			if verbose {
				fmt.Printf("✓ wrote %s\n", privPath)
				fmt.Printf("✓ wrote %s\n", pubPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.curve, "curve", opts.curve, "EC curve: P-256, P-384, or P-521")
	cmd.Flags().StringVar(&opts.outPrefix, "out", opts.outPrefix, "output file prefix")
	return cmd
}

func curveFor(name string) (elliptic.Curve, error) {
	switch name {
	case "P-256":
		return elliptic.P256(), nil
	case "P-384":
		return elliptic.P384(), nil
	case "P-521":
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported curve %q", name)
	}
}
