package cli

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coseforge/cosecore/pkg/cose"
)

type signOptions struct {
	keyPath     string
	payloadPath string
	outPath     string
	detached    bool
	kid         string
	x5chain     []string
}

// NewSignCommand builds the `cosetool sign` command (COSE_Sign1).
func NewSignCommand() *cobra.Command {
	opts := &signOptions{}
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a payload as a COSE_Sign1 message",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := loadECPrivateKey(opts.keyPath)
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(opts.payloadPath)
			if err != nil {
				return fmt.Errorf("reading payload %s: %w", opts.payloadPath, err)
			}
			alg, err := sigAlgForCurve(priv.Curve.Params().Name)
			if err != nil {
				return err
			}
			signer := &cose.MainSigner{Alg: alg, Kid: []byte(opts.kid), Key: priv}

			var extra *cose.Param
			if len(opts.x5chain) > 0 {
				certs := make([][]byte, len(opts.x5chain))
				for i, p := range opts.x5chain {
					der, rerr := os.ReadFile(p)
					if rerr != nil {
						return fmt.Errorf("reading certificate %s: %w", p, rerr)
					}
					certs[i] = der
				}
				raw, rerr := cose.EncodeX5Chain(certs)
				if rerr != nil {
					return fmt.Errorf("encoding x5chain: %w", rerr)
				}
				extra = cose.X5ChainParam(raw, false)
			}

			msg, err := cose.Sign1(cose.NewStdAdapter(), signer, payload, opts.detached, extra, cose.Options{})
			if err != nil {
				return fmt.Errorf("signing: %w", err)
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
	cmd.Flags().StringVar(&opts.keyPath, "key", "", "path to a PEM EC private key")
	cmd.Flags().StringVar(&opts.payloadPath, "payload", "", "path to the payload to sign")
	cmd.Flags().StringVar(&opts.outPath, "out", "message.cbor", "output path for the COSE_Sign1 message")
	cmd.Flags().BoolVar(&opts.detached, "detached", false, "omit the payload from the message")
	cmd.Flags().StringVar(&opts.kid, "kid", "", "key identifier to embed in the unprotected header")
	cmd.Flags().StringArrayVar(&opts.x5chain, "x5chain", nil, "path to a DER certificate to embed in x5chain, leaf first (repeatable)")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("payload")
	return cmd
}

func loadECPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing key %s: %w", path, err)
	}
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s is not an EC private key", path)
	}
	return priv, nil
}

func loadECPublicKey(path string) (*ecdsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing key %s: %w", path, err)
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s is not an EC public key", path)
	}
	return pub, nil
}

func sigAlgForCurve(name string) (cose.SigAlg, error) {
	switch name {
	case "P-256":
		return cose.AlgES256, nil
	case "P-384":
		return cose.AlgES384, nil
	case "P-521":
		return cose.AlgES512, nil
	default:
		return 0, fmt.Errorf("unsupported curve %q", name)
	}
}
