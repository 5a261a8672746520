package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/mahdiidarabi/go-dsa/pkg/dsa"
	"github.com/mahdiidarabi/go-dsa/pkg/keyio"
)

func main() {
	var (
		generate = flag.Bool("generate", false, "Generate domain parameters and a key pair")
		sign     = flag.Bool("sign", false, "Sign a message with a private key")
		verify   = flag.Bool("verify", false, "Verify a signature against a public key")

		size     = flag.Int("size", 2048, "Bit length of the prime modulus p")
		qsize    = flag.Int("qsize", 0, "Bit length of the subgroup order q (0 = standard default)")
		standard = flag.String("standard", "", "FIPS revision (anything matching 186-3 or 186-4 selects the SHA-2 regimen)")
		prove    = flag.String("prove", "", "Provable primality: P, Q, or a boolean for both")
		seedHex  = flag.String("seed", "", "Domain-parameter seed in hex (optional)")
		outFile  = flag.String("out", "dsa_key.pem", "Output file for the generated private key")
		comment  = flag.String("comment", "", "Comment for the public-key envelope")

		keyFile = flag.String("keyfile", "", "PEM key file for signing or verification")
		message = flag.String("message", "", "Message to sign or verify")
		sigHex  = flag.String("sig", "", "Signature to verify, as r:s in hex")
		sigFile = flag.String("sigfile", "", "Batch signature file to verify (JSON or CSV)")
		format  = flag.String("format", "json", "Batch signature file format (json or csv)")
		quiet   = flag.Bool("quiet", false, "Suppress progress output")
	)
	flag.Parse()

	var err error
	switch {
	case *generate:
		err = runGenerate(*size, *qsize, *standard, *prove, *seedHex, *outFile, *comment, *quiet)
	case *sign:
		err = runSign(*keyFile, *message)
	case *verify && *sigFile != "":
		err = runVerifyBatch(*keyFile, *sigFile, *format)
	case *verify:
		err = runVerify(*keyFile, *message, *sigHex)
	default:
		fmt.Fprintln(os.Stderr, "Error: one of -generate, -sign, -verify is required")
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(size, qsize int, standard, prove, seedHex, outFile, comment string, quiet bool) error {
	proveMode, err := dsa.ParseProve(prove)
	if err != nil {
		return err
	}

	var seed []byte
	if seedHex != "" {
		seed, err = hex.DecodeString(seedHex)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
	}

	engine := dsa.New().WithStandard(dsa.ParseStandard(standard))
	if !quiet {
		engine = engine.WithProgress(func(phase string, i int) error {
			fmt.Fprint(os.Stderr, ".")
			return nil
		})
	}

	key, info, err := engine.KeyGen(context.Background(), dsa.GenConfig{
		Size:  size,
		QSize: qsize,
		Seed:  seed,
		Prove: proveMode,
	})
	if !quiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	pemBytes, err := keyio.EncodePrivatePEM(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, pemBytes, 0600); err != nil {
		return err
	}

	pubLine, err := keyio.EncodeAuthorizedKey(key, comment)
	if err != nil {
		return err
	}
	pubFile := outFile + ".pub"
	if err := os.WriteFile(pubFile, pubLine, 0644); err != nil {
		return err
	}

	fmt.Printf("Accepted p at counter %d (h = %s, seed = %x)\n", info.Counter, info.H, info.Seed)
	fmt.Printf("Private key written to %s\n", outFile)
	fmt.Printf("Public key written to %s\n", pubFile)
	return nil
}

func loadKey(keyFile string) (*dsa.Key, error) {
	if keyFile == "" {
		return nil, fmt.Errorf("-keyfile is required")
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	key, err := keyio.DecodePrivatePEM(data)
	if err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}

func runSign(keyFile, message string) error {
	if message == "" {
		return fmt.Errorf("-message is required")
	}
	key, err := loadKey(keyFile)
	if err != nil {
		return err
	}

	sig, err := dsa.New().Sign(key, []byte(message))
	if err != nil {
		return err
	}
	fmt.Printf("%x:%x\n", sig.R, sig.S)
	return nil
}

func runVerify(keyFile, message, sigHex string) error {
	if message == "" {
		return fmt.Errorf("-message is required")
	}
	key, err := loadKey(keyFile)
	if err != nil {
		return err
	}
	sig, err := parseSignature(sigHex)
	if err != nil {
		return err
	}

	ok, err := dsa.New().Verify(key.Public(), sig, []byte(message))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("signature does not verify")
	}
	fmt.Println("Signature verified")
	return nil
}

func runVerifyBatch(keyFile, sigFile, format string) error {
	key, err := loadKey(keyFile)
	if err != nil {
		return err
	}

	var records []*keyio.Record
	if format == "csv" {
		records, err = keyio.ReadSignaturesCSV(sigFile, "", "", "", "")
	} else {
		records, err = keyio.ReadSignaturesJSON(sigFile, "", "", "", "")
	}
	if err != nil {
		return err
	}

	verdicts, err := keyio.VerifyBatch(dsa.New(), key.Public(), records)
	if err != nil {
		return err
	}

	failed := 0
	for i, ok := range verdicts {
		if !ok {
			failed++
			fmt.Printf("record %d: FAILED\n", i)
		}
	}
	fmt.Printf("%d of %d signatures verified\n", len(verdicts)-failed, len(verdicts))
	if failed > 0 {
		return fmt.Errorf("%d signatures failed verification", failed)
	}
	return nil
}

func parseSignature(s string) (*dsa.Signature, error) {
	rHex, sHex, found := strings.Cut(s, ":")
	if !found {
		return nil, fmt.Errorf("signature must be r:s in hex, got %q", s)
	}
	r, okR := new(big.Int).SetString(rHex, 16)
	v, okS := new(big.Int).SetString(sHex, 16)
	if !okR || !okS {
		return nil, fmt.Errorf("signature must be r:s in hex, got %q", s)
	}
	return &dsa.Signature{R: r, S: v}, nil
}
